package notify

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

// WebhookPublisher announces confirmed submissions to an external dispatcher.
// Delivery, retries and message content are the dispatcher's problem; a
// failed post is logged and dropped so it can never fail a submit.
type WebhookPublisher struct {
	client     *fasthttp.Client
	webhookURL string
	authToken  string
	timeout    time.Duration
	logger     *slog.Logger
}

type PublisherConfig struct {
	WebhookURL string
	AuthToken  string
	Timeout    time.Duration
}

func NewWebhookPublisher(cfg PublisherConfig, logger *slog.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookPublisher{
		client:     &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		timeout:    timeout,
		logger:     logger,
	}
}

type submissionEvent struct {
	Event        string `json:"event"`
	UserID       string `json:"user_id"`
	Round        int    `json:"round"`
	LeagueID     string `json:"league_id,omitempty"`
	AllMembersIn bool   `json:"all_members_in"`
	OccurredAt   string `json:"occurred_at"`
}

func (p *WebhookPublisher) SubmissionConfirmed(ctx context.Context, userID string, round int, leagueID string, allMembersIn bool) {
	if p.webhookURL == "" {
		return
	}

	payload := submissionEvent{
		Event:        "submission.confirmed",
		UserID:       userID,
		Round:        round,
		LeagueID:     leagueID,
		AllMembersIn: allMembersIn,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal submission event", "error", err)
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Idempotency-Key", dedupKey(userID, round, leagueID))
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}
	req.SetBody(body)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		p.logger.WarnContext(ctx, "post submission event", "error", err, "user_id", userID, "round", round)
		return
	}
	if resp.StatusCode()/100 != 2 {
		p.logger.WarnContext(ctx, "submission event rejected",
			"status_code", resp.StatusCode(), "user_id", userID, "round", round)
		return
	}

	p.logger.InfoContext(ctx, "submission event published",
		"user_id", userID, "round", round, "league_id", leagueID, "all_members_in", allMembersIn)
}

// dedupKey lets the dispatcher drop the duplicate events an idempotent
// resubmit produces.
func dedupKey(userID string, round int, leagueID string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("submission:")
	_, _ = buf.WriteString(userID)
	_, _ = buf.WriteString(":")
	_, _ = buf.WriteString(strconv.Itoa(round))
	if leagueID != "" {
		_, _ = buf.WriteString(":")
		_, _ = buf.WriteString(leagueID)
	}
	return buf.String()
}
