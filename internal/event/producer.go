package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/techy-Nik/assignment-13/internal/domain"
	pkgkafka "github.com/techy-Nik/assignment-13/pkg/kafka"
)

// Kafka topic constants for auth domain events.
const (
	TopicUserRegistered = "auth.user.registered"
	TopicUserLoggedIn   = "auth.user.logged_in"
	TopicUserLoggedOut  = "auth.user.logged_out"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceAuthService = "auth-service"

// UserRegisteredData is the payload for a user_registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SessionData is the payload for login/logout events.
type SessionData struct {
	UserID string `json:"user_id"`
}

// Producer publishes auth domain events to Kafka. Publishing is best-effort:
// callers log failures but never fail the auth operation over them.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the auth service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user_registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Username: user.Username,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create user_registered event: %w", err)
	}

	return p.kafka.Publish(ctx, TopicUserRegistered, event)
}

// PublishUserLoggedIn publishes a user_logged_in event.
func (p *Producer) PublishUserLoggedIn(ctx context.Context, userID string) error {
	event, err := pkgkafka.NewEvent(TopicUserLoggedIn, userID, AggregateTypeUser, SourceAuthService, SessionData{UserID: userID})
	if err != nil {
		return fmt.Errorf("create user_logged_in event: %w", err)
	}

	return p.kafka.Publish(ctx, TopicUserLoggedIn, event)
}

// PublishUserLoggedOut publishes a user_logged_out event.
func (p *Producer) PublishUserLoggedOut(ctx context.Context, userID string) error {
	event, err := pkgkafka.NewEvent(TopicUserLoggedOut, userID, AggregateTypeUser, SourceAuthService, SessionData{UserID: userID})
	if err != nil {
		return fmt.Errorf("create user_logged_out event: %w", err)
	}

	return p.kafka.Publish(ctx, TopicUserLoggedOut, event)
}
