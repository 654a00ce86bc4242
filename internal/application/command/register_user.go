package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/domain/storage"
	"github.com/tasktrek-hub/tasktrek/internal/domain/user"
	"github.com/tasktrek-hub/tasktrek/pkg/logger"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates the user, their gamification profile, and the first daily quest in
// one transaction. A user without a profile must never be observable.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the registration data.
type RegisterUserCommand struct {
	Username string
	Password string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if c.Username == "" {
		return errors.New("register_user: username is required")
	}
	if len(c.Password) < 8 {
		return errors.New("register_user: password must be at least 8 characters")
	}
	return nil
}

// RegisterUserResult contains the created identifiers.
type RegisterUserResult struct {
	UserID   string
	Username string
	QuestID  string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	uow       storage.UnitOfWork
	generator *quest.Generator
	publisher shared.EventPublisher
	clock     *timeutil.Clock
	log       *logger.Logger
}

// NewRegisterUserHandler creates the handler.
func NewRegisterUserHandler(
	uow storage.UnitOfWork,
	generator *quest.Generator,
	publisher shared.EventPublisher,
	clock *timeutil.Clock,
	log *logger.Logger,
) *RegisterUserHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if clock == nil {
		clock = timeutil.NewClock(time.UTC)
	}
	if log == nil {
		log = logger.Default()
	}
	return &RegisterUserHandler{
		uow:       uow,
		generator: generator,
		publisher: publisher,
		clock:     clock,
		log:       log.With(logger.Component("register_user")),
	}
}

// Handle executes the registration.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "RegisterUser", shared.ErrValidation, "invalid command", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.WrapError("command", "RegisterUser", shared.ErrInvalidInput, "password hashing failed", err)
	}

	u, err := user.NewUser(uuid.NewString(), cmd.Username, string(hash))
	if err != nil {
		return nil, err
	}

	questID := uuid.NewString()

	err = h.uow.Do(ctx, func(r storage.Repos) error {
		if err := r.Users.Create(ctx, u); err != nil {
			return err
		}

		if err := r.Profiles.Create(ctx, gamification.NewProfile(u.ID)); err != nil {
			return err
		}

		q, err := h.generator.Generate(questID, u.ID, h.clock.Now())
		if err != nil {
			return err
		}
		return r.Quests.Create(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("user registered",
		logger.UserID(u.ID),
		logger.String("username", u.Username),
	)

	if err := h.publisher.Publish(shared.NewUserRegisteredEvent(u.ID, u.Username)); err != nil {
		h.log.Warn("event publish failed", logger.Err(err))
	}

	return &RegisterUserResult{
		UserID:   u.ID,
		Username: u.Username,
		QuestID:  questID,
	}, nil
}
