package googlecal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coachbook/internal/domain/schedule"
	"coachbook/internal/pkg/config"
	"coachbook/internal/pkg/errs"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// TokenStore supplies and persists per-instructor OAuth tokens. Persisting
// after each call keeps refreshed access tokens out of the hot path on the
// next one.
type TokenStore interface {
	Load(ctx context.Context, instructorID uuid.UUID) (*oauth2.Token, error)
	Save(ctx context.Context, instructorID uuid.UUID, token *oauth2.Token) error
}

type Client struct {
	oauth  *oauth2.Config
	tokens TokenStore
}

func NewClient(cfg config.CalendarConfig, tokens TokenStore) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendar.CalendarScope},
		},
		tokens: tokens,
	}
}

func (c *Client) service(ctx context.Context, instructorID uuid.UUID) (*calendar.Service, oauth2.TokenSource, *oauth2.Token, error) {
	token, err := c.tokens.Load(ctx, instructorID)
	if err != nil {
		return nil, nil, nil, errs.Wrap(err, "failed to load instructor token")
	}

	source := c.oauth.TokenSource(ctx, token)
	svc, err := calendar.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, nil, nil, errs.Wrap(err, "failed to build calendar service")
	}
	return svc, source, token, nil
}

// persistRefresh writes the token back when the source rotated it.
func (c *Client) persistRefresh(ctx context.Context, instructorID uuid.UUID, source oauth2.TokenSource, old *oauth2.Token) {
	current, err := source.Token()
	if err != nil || current.AccessToken == old.AccessToken {
		return
	}
	if saveErr := c.tokens.Save(ctx, instructorID, current); saveErr != nil {
		slog.Warn("failed to persist refreshed token", "instructor_id", instructorID, "error", saveErr)
	}
}

func (c *Client) FreeBusy(ctx context.Context, instructorID uuid.UUID, calendarID string, from, to time.Time) ([]schedule.Interval, error) {
	svc, source, token, err := c.service(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, errs.Wrap(err, "freebusy query failed")
	}
	c.persistRefresh(ctx, instructorID, source, token)

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, errs.New("freebusy response missing requested calendar")
	}
	if len(cal.Errors) > 0 {
		return nil, errs.Wrapf(errs.New(cal.Errors[0].Reason), "freebusy error for calendar %s", calendarID)
	}

	intervals := make([]schedule.Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		iv, parseErr := parseBusyPeriod(period)
		if parseErr != nil {
			// Malformed entries come from the provider, not us; dropping
			// one interval beats rejecting the whole sync.
			slog.Warn("skipping malformed busy period",
				"calendar_id", calendarID, "start", period.Start, "end", period.End, "error", parseErr)
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}

func parseBusyPeriod(period *calendar.TimePeriod) (schedule.Interval, error) {
	start, err := time.Parse(time.RFC3339, period.Start)
	if err != nil {
		return schedule.Interval{}, errs.Wrap(err, "invalid busy start")
	}
	end, err := time.Parse(time.RFC3339, period.End)
	if err != nil {
		return schedule.Interval{}, errs.Wrap(err, "invalid busy end")
	}
	iv := schedule.Interval{Start: start, End: end}
	if !iv.IsValid() {
		return schedule.Interval{}, errs.New("busy start not before end")
	}
	return iv, nil
}

func (c *Client) CreateEvent(ctx context.Context, instructorID uuid.UUID, calendarID string, params usecase.EventParams) (*usecase.CalendarEvent, error) {
	svc, source, token, err := c.service(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary: params.Title,
		Start: &calendar.EventDateTime{
			DateTime: params.Start.Format(time.RFC3339),
			TimeZone: params.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: params.End.Format(time.RFC3339),
			TimeZone: params.TimeZone,
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := svc.Events.Insert(calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return nil, errs.Wrap(err, "event insert failed")
	}
	c.persistRefresh(ctx, instructorID, source, token)

	return &usecase.CalendarEvent{
		ID:       created.Id,
		MeetLink: created.HangoutLink,
		HTMLLink: created.HtmlLink,
	}, nil
}

func (c *Client) DeleteEvent(ctx context.Context, instructorID uuid.UUID, calendarID, eventID string) error {
	svc, source, token, err := c.service(ctx, instructorID)
	if err != nil {
		return err
	}

	err = svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		// Already gone counts as deleted; compensation must be idempotent.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			return nil
		}
		return errs.Wrap(err, "event delete failed")
	}
	c.persistRefresh(ctx, instructorID, source, token)
	return nil
}
