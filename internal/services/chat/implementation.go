package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/mediconnect/assistant/internal/metrics"
	"github.com/mediconnect/assistant/internal/services/relay"
	"github.com/mediconnect/assistant/pkg/logger"
	"github.com/rs/zerolog/log"
)

const (
	platformRequester = "platform"
	defaultRole       = "patient"

	unavailableMessage = "The assistant is temporarily unavailable. Please try again."
	internalMessage    = "Internal server error"
)

type Implementation struct {
	client   StreamClient
	gateway  QueryGateway
	composer *Composer
	relay    *relay.Relay
	classify Classifier
	validate *validator.Validate
}

// Option customises an Implementation
type Option func(*Implementation)

// WithClassifier replaces the personal-data keyword heuristic
func WithClassifier(classify Classifier) Option {
	return func(s *Implementation) {
		s.classify = classify
	}
}

// NewService wires the orchestrator. gateway may be nil, in which case requests are
// never augmented from the platform.
func NewService(client StreamClient, gateway QueryGateway, composer *Composer, r *relay.Relay, opts ...Option) (*Implementation, error) {
	if client == nil {
		return nil, fmt.Errorf("model stream client is required")
	}
	if r == nil {
		return nil, fmt.Errorf("stream relay is required")
	}
	if composer == nil {
		composer = NewComposer(nil)
	}

	s := &Implementation{
		client:   client,
		gateway:  gateway,
		composer: composer,
		relay:    r,
		classify: KeywordClassifier,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Implementation) Handle(ctx context.Context, req models.ConversationRequest, sink relay.Sink) {
	logger.Debug(logger.CHAT, "Handling assistant request with %d turns", len(req.Turns))

	stream, err := s.prepare(ctx, req)
	if err != nil {
		s.reject(sink, err)
		return
	}

	s.relay.Run(ctx, stream, sink, relay.Options{
		Transport:   transportOf(sink),
		RequesterID: req.RequesterID,
	})
}

// prepare runs every step that happens before the transport opens
func (s *Implementation) prepare(ctx context.Context, req models.ConversationRequest) (stream relay.TokenStream, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered panic while preparing assistant request")
			stream, err = nil, fmt.Errorf("panic while preparing request: %v", r)
		}
	}()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	turns := s.augment(ctx, req)
	modelRequest := s.composer.Compose(turns, req.RequesterID)

	stream, err = s.client.Stream(ctx, modelRequest)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, fmt.Errorf("%w: provider returned no stream", ErrModelUnavailable)
	}
	return stream, nil
}

func (s *Implementation) validateRequest(req models.ConversationRequest) error {
	if len(req.Turns) == 0 {
		return fmt.Errorf("%w: messages must not be empty", ErrInvalidRequest)
	}

	for i, turn := range req.Turns {
		if err := s.validate.Struct(turn); err != nil {
			return fmt.Errorf("%w: message %d: %s", ErrInvalidRequest, i, describeValidation(err))
		}
	}

	if wantsAugmentation(req) && req.Turns[len(req.Turns)-1].Role != models.RoleUser {
		return fmt.Errorf("%w: the last message must be a user message", ErrInvalidRequest)
	}
	return nil
}

func describeValidation(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, ", ")
}

func wantsAugmentation(req models.ConversationRequest) bool {
	return req.Augment && req.RequesterID != ""
}

// augment returns the turns to send to the model. Any failure falls back to req.Turns.
func (s *Implementation) augment(ctx context.Context, req models.ConversationRequest) []models.ChatTurn {
	if !wantsAugmentation(req) {
		metrics.AugmentationsTotal.WithLabelValues("skipped").Inc()
		return req.Turns
	}

	idx := models.LastUserTurn(req.Turns)
	if idx < 0 {
		metrics.AugmentationsTotal.WithLabelValues("skipped").Inc()
		return req.Turns
	}
	original := req.Turns[idx].Content

	result, err := s.lookup(ctx, req, original)
	if err != nil {
		log.Warn().Err(err).Str("requester_id", req.RequesterID).Msg("Continuing without domain data")
		metrics.AugmentationsTotal.WithLabelValues("failed").Inc()
		return req.Turns
	}

	rewritten, template := BuildAugmentedTurn(original, result, true, s.classify)
	if template == TemplateNone {
		logger.Debug(logger.CHAT, "No domain data for requester %s", req.RequesterID)
		metrics.AugmentationsTotal.WithLabelValues("empty").Inc()
		return req.Turns
	}

	logger.Debug(logger.CHAT, "Augmented latest user turn with %s template", template)
	metrics.AugmentationsTotal.WithLabelValues("applied").Inc()
	return models.ReplaceTurn(req.Turns, idx, rewritten)
}

// lookup prefers caller supplied context over the gateway
func (s *Implementation) lookup(ctx context.Context, req models.ConversationRequest, text string) (*models.QueryResult, error) {
	if req.ContextData != nil {
		return req.ContextData, nil
	}
	if s.gateway == nil {
		return nil, nil
	}

	requester := req.RequesterID
	if requester == "" {
		requester = platformRequester
	}
	role := req.RequesterRole
	if role == "" {
		role = defaultRole
	}

	result, err := s.gateway.Query(ctx, requester, role, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAugmentationFailed, err)
	}
	return result, nil
}

// reject reports a pre-transport failure as a single terminal error
func (s *Implementation) reject(sink relay.Sink, err error) {
	status, message, reason := http.StatusInternalServerError, internalMessage, "internal"

	switch {
	case errors.Is(err, ErrInvalidRequest):
		status, message, reason = http.StatusBadRequest, err.Error(), "invalid_request"
	case errors.Is(err, ErrModelUnavailable):
		status, message, reason = http.StatusServiceUnavailable, unavailableMessage, "model_unavailable"
	}

	log.Warn().Err(err).Int("status", status).Msg("Rejected assistant request")
	metrics.RejectedTotal.WithLabelValues(reason).Inc()

	sink.Fail(status, message)
	if closeErr := sink.Close(); closeErr != nil {
		logger.Debug(logger.CHAT, "Failed to close sink after rejection: %v", closeErr)
	}
}

func transportOf(sink relay.Sink) string {
	switch sink.(type) {
	case *relay.HTTPSink:
		return "http"
	case *relay.WebSocketSink:
		return "websocket"
	default:
		return "custom"
	}
}
