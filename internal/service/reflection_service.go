package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/store"
)

// ReflectionService records and reads prompted reflections. Reflections
// feed the journaling timeline but not the scoring window, so no encryption
// gate or sync involvement.
type ReflectionService interface {
	// AddReflection stores a new reflection for the user.
	AddReflection(
		ctx context.Context,
		userID uuid.UUID,
		prompt, response string,
		sentiment float64,
		isShared bool,
	) (*domain.EmotionalReflection, error)

	// GetReflections returns the user's reflections ordered by creation
	// time ascending.
	GetReflections(ctx context.Context, userID uuid.UUID) ([]*domain.EmotionalReflection, error)
}

// reflectionServiceImpl implements the ReflectionService interface.
type reflectionServiceImpl struct {
	reflections store.ReflectionStore
	logger      *slog.Logger
}

// NewReflectionService creates a new ReflectionService.
// It returns an error if any of the required dependencies are nil.
func NewReflectionService(
	reflections store.ReflectionStore,
	logger *slog.Logger,
) (ReflectionService, error) {
	if reflections == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "reflections cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reflectionServiceImpl{
		reflections: reflections,
		logger:      logger.With(slog.String("component", "reflection_service")),
	}, nil
}

// AddReflection implements ReflectionService.AddReflection
func (s *reflectionServiceImpl) AddReflection(
	ctx context.Context,
	userID uuid.UUID,
	prompt, response string,
	sentiment float64,
	isShared bool,
) (*domain.EmotionalReflection, error) {
	reflection, err := domain.NewEmotionalReflection(userID, prompt, response, sentiment, isShared)
	if err != nil {
		return nil, err
	}

	if err := s.reflections.Create(ctx, reflection); err != nil {
		return nil, NewServiceError("add_reflection", "failed to store reflection", err)
	}

	s.logger.Debug("reflection recorded",
		slog.String("reflection_id", reflection.ID.String()),
		slog.String("user_id", userID.String()))
	return reflection, nil
}

// GetReflections implements ReflectionService.GetReflections
func (s *reflectionServiceImpl) GetReflections(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EmotionalReflection, error) {
	reflections, err := s.reflections.ReadByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_reflections", "failed to read reflections", err)
	}
	return reflections, nil
}
