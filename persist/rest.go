package persist

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/pkg/logger"
)

// RESTRecorder saves to a hosted backend over JSON HTTP:
//
//	GET  /fights?session_key=K          -> [{"id": 1, "fingerprint": "..."}]
//	POST /fights                        -> {"id": 1}
//	PUT  /fights/{id}                   (fight body; drops the fight's rounds and strikes)
//	GET  /fights/{id}/rounds            -> [{"id": 7, "number": 1}]
//	POST /fights/{id}/rounds            -> {"id": 7}
//	GET  /fights/{id}/strikes/count     -> {"count": 0}
//	POST /fights/{id}/strikes           (array body, all or nothing)
//
// Requests are not retried; Save is safe to run again instead.
type RESTRecorder struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

type idResponse struct {
	ID int64 `json:"id"`
}

type fightRef struct {
	ID          int64  `json:"id"`
	Fingerprint string `json:"fingerprint"`
}

type roundRef struct {
	ID     int64 `json:"id"`
	Number int   `json:"number"`
}

type countResponse struct {
	Count int `json:"count"`
}

// NewRESTRecorder creates a recorder for the backend at baseURL.
func NewRESTRecorder(baseURL, apiKey string, log *zap.Logger) *RESTRecorder {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RESTRecorder{httpClient: client, logger: logger.OrNop(log)}
}

func (c *RESTRecorder) check(resp *resty.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if resp.IsError() {
		c.logger.Error("backend returned error",
			zap.String("call", what),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("%s: backend returned %s", what, resp.Status())
	}
	return nil
}

// FindFight looks a fight up by session key.
func (c *RESTRecorder) FindFight(ctx context.Context, sessionKey string) (int64, string, bool, error) {
	var found []fightRef
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("session_key", sessionKey).
		SetResult(&found).
		Get("/fights")
	if err := c.check(resp, err, "find fight"); err != nil {
		return 0, "", false, err
	}
	if len(found) == 0 {
		return 0, "", false, nil
	}
	return found[0].ID, found[0].Fingerprint, true, nil
}

// InsertFight creates the fight and returns its id.
func (c *RESTRecorder) InsertFight(ctx context.Context, f FightRecord) (int64, error) {
	var created idResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(f).
		SetResult(&created).
		Post("/fights")
	if err := c.check(resp, err, "insert fight"); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("insert fight: backend returned no id")
	}
	return created.ID, nil
}

// ReplaceFight overwrites the fight; the backend drops its rounds and strikes.
func (c *RESTRecorder) ReplaceFight(ctx context.Context, id int64, f FightRecord) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(f).
		Put("/fights/{id}")
	return c.check(resp, err, "replace fight")
}

// FindRounds lists the saved rounds of a fight.
func (c *RESTRecorder) FindRounds(ctx context.Context, fightID int64) (map[int]int64, error) {
	var rounds []roundRef
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(fightID, 10)).
		SetResult(&rounds).
		Get("/fights/{id}/rounds")
	if err := c.check(resp, err, "find rounds"); err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rounds))
	for _, r := range rounds {
		out[r.Number] = r.ID
	}
	return out, nil
}

// InsertRound creates one round and returns its id.
func (c *RESTRecorder) InsertRound(ctx context.Context, fightID int64, r RoundRecord) (int64, error) {
	var created idResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(fightID, 10)).
		SetBody(r).
		SetResult(&created).
		Post("/fights/{id}/rounds")
	if err := c.check(resp, err, "insert round"); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("insert round: backend returned no id")
	}
	return created.ID, nil
}

// CountStrikes returns how many strikes a fight has.
func (c *RESTRecorder) CountStrikes(ctx context.Context, fightID int64) (int, error) {
	var count countResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(fightID, 10)).
		SetResult(&count).
		Get("/fights/{id}/strikes/count")
	if err := c.check(resp, err, "count strikes"); err != nil {
		return 0, err
	}
	return count.Count, nil
}

// InsertStrikes posts the whole strike batch.
func (c *RESTRecorder) InsertStrikes(ctx context.Context, fightID int64, strikes []StrikeRecord) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(fightID, 10)).
		SetBody(strikes).
		Post("/fights/{id}/strikes")
	if err := c.check(resp, err, "insert strikes"); err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("insert strikes: unexpected status %s", resp.Status())
	}
	return nil
}
