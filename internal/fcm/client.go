package fcm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Additional-Code/runner/internal/config"
)

// Scope is the OAuth2 scope required by the FCM v1 API.
const Scope = "https://www.googleapis.com/auth/cloud-platform"

var fcmTracer = otel.Tracer("github.com/Additional-Code/runner/fcm")

// ErrMissingToken is returned when a message has no device token.
var ErrMissingToken = errors.New("fcm: device token is required")

// Message is a single push notification.
type Message struct {
	Token string
	Title string
	Body  string
	Image string
}

// Sender delivers push notifications.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Module provides the configured Sender.
var Module = fx.Provide(NewSender)

// NewSender returns an FCM client when enabled, otherwise a sender that only logs.
func NewSender(cfg config.Config, logger *zap.Logger) (Sender, error) {
	if !cfg.FCM.Enabled {
		logger.Info("fcm disabled; push notifications will be logged only")
		return noopSender{logger: logger}, nil
	}

	data, err := os.ReadFile(cfg.FCM.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(context.Background(), data, Scope)
	if err != nil {
		return nil, fmt.Errorf("parse fcm credentials: %w", err)
	}

	projectID := cfg.FCM.ProjectID
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, errors.New("fcm project id missing from FCM_PROJECT_ID and credentials")
	}

	return NewClient(cfg.FCM.Endpoint, projectID, creds.TokenSource, cfg.FCM.Timeout, logger), nil
}

// Client sends messages through the FCM HTTP v1 API.
type Client struct {
	http      *resty.Client
	tokens    oauth2.TokenSource
	projectID string
	logger    *zap.Logger
}

// NewClient builds a client against endpoint using tokens for authorization.
func NewClient(endpoint, projectID string, tokens oauth2.TokenSource, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger: logger.Sugar()})

	return &Client{
		http:      httpClient,
		tokens:    oauth2.ReuseTokenSource(nil, tokens),
		projectID: projectID,
		logger:    logger,
	}
}

type sendRequest struct {
	Message      wireMessage `json:"message"`
	ValidateOnly bool        `json:"validate_only"`
}

type wireMessage struct {
	Token        string           `json:"token"`
	Notification wireNotification `json:"notification"`
}

type wireNotification struct {
	Title string  `json:"title"`
	Body  string  `json:"body"`
	Image *string `json:"image"`
}

type sendResponse struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Send posts msg to FCM and returns the message name assigned by FCM.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", ErrMissingToken
	}

	ctx, span := fcmTracer.Start(ctx, "FCM.Send", trace.WithAttributes(attribute.String("fcm.project", c.projectID)))
	defer span.End()

	token, err := c.tokens.Token()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token error")
		return "", fmt.Errorf("fcm access token: %w", err)
	}

	var image *string
	if msg.Image != "" {
		image = &msg.Image
	}
	body := sendRequest{
		Message: wireMessage{
			Token:        msg.Token,
			Notification: wireNotification{Title: msg.Title, Body: msg.Body, Image: image},
		},
	}

	var result sendResponse
	var failure errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetPathParam("project", c.projectID).
		SetBody(body).
		SetResult(&result).
		SetError(&failure).
		Post("/v1/projects/{project}/messages:send")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", fmt.Errorf("fcm request: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if !resp.IsSuccess() {
		err := fmt.Errorf("fcm send failed: %d %s: %s", resp.StatusCode(), failure.Error.Status, failure.Error.Message)
		c.logger.Warn("fcm rejected message", zap.Int("status", resp.StatusCode()), zap.String("fcm_status", failure.Error.Status))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fcm error")
		return "", err
	}

	c.logger.Debug("fcm message sent", zap.String("name", result.Name))
	return result.Name, nil
}

type noopSender struct {
	logger *zap.Logger
}

func (n noopSender) Send(_ context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", ErrMissingToken
	}
	n.logger.Info("push notification skipped",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
	)
	return "", nil
}

type restyLogger struct {
	logger *zap.SugaredLogger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.logger.Errorf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.logger.Warnf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.logger.Debugf(format, v...) }
