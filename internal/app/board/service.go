package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"boards-backend/internal/providers/core"
	"boards-backend/internal/providers/mailer"
	"boards-backend/internal/providers/redis"

	"go.uber.org/zap"
)

// ErrForbidden is returned when the caller lacks the manage-boards grant for
// the targeted body.
var ErrForbidden = errors.New("not allowed to manage boards")

// IdentityResolver is the part of the core client the workflow needs.
type IdentityResolver interface {
	FetchBody(ctx context.Context, bodyID int64, token string) (*core.Body, error)
	FetchUser(ctx context.Context, userID int64, token string) (*core.User, error)
}

// MailSender dispatches a notification message.
type MailSender interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

type Service interface {
	CreateBoard(ctx context.Context, token string, perms *core.Permissions, input *BoardInput) (*CreatedBoard, error)
	ListBoards(ctx context.Context, filter ListFilter, sorting Sorting) ([]*Board, error)
	GetBoard(ctx context.Context, id uint64) (*Board, error)
	UpdateBoard(ctx context.Context, perms *core.Permissions, id uint64, input *BoardInput) (*Board, error)
	DeleteBoard(ctx context.Context, perms *core.Permissions, id uint64) (*Board, error)
}

type service struct {
	repo       Repository
	identity   IdentityResolver
	mail       MailSender
	redisP     *redis.RedisProvider
	recipients []string
	logger     *zap.SugaredLogger
}

func NewService(
	repo Repository,
	identity IdentityResolver,
	mail MailSender,
	redisP *redis.RedisProvider,
	recipients []string,
	logger *zap.Logger,
) Service {
	return &service{
		repo:       repo,
		identity:   identity,
		mail:       mail,
		redisP:     redisP,
		recipients: recipients,
		logger:     logger.Sugar(),
	}
}

// CreateBoard runs the full creation workflow: permission gate, field
// validation, body and officer resolution against the identity service, then
// one transaction persisting the record and dispatching the notification.
// The insert and the mail stand or fall together; a mailer failure rolls the
// record back.
func (s *service) CreateBoard(ctx context.Context, token string, perms *core.Permissions, input *BoardInput) (*CreatedBoard, error) {
	if !canManage(perms, input.BodyID) {
		return nil, ErrForbidden
	}

	board := &Board{}
	input.Apply(board)
	if errs := board.Validate(Today()); errs != nil {
		return nil, errs
	}

	body, err := s.identity.FetchBody(ctx, board.BodyID, token)
	if err != nil {
		return nil, err
	}

	positions, err := s.resolvePositions(ctx, board, token)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(func(txRepo Repository) error {
		if err := txRepo.Create(board); err != nil {
			return err
		}
		return s.mail.Send(ctx, s.notification(board, body.BodyName, positions))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	s.logger.Infow("Board created",
		"board_id", board.ID,
		"body_id", board.BodyID,
		"body_name", body.BodyName,
	)

	return &CreatedBoard{Board: board, BodyName: body.BodyName, Positions: positions}, nil
}

// resolvePositions fetches display names for every officer, one lookup per
// position: president, secretary, treasurer, then the other members in
// submission order.
func (s *service) resolvePositions(ctx context.Context, board *Board, token string) ([]Position, error) {
	officers := []struct {
		function string
		userID   int64
	}{
		{"President", board.President},
		{"Secretary", board.Secretary},
		{"Treasurer", board.Treasurer},
	}
	for _, member := range board.OtherMembers {
		officers = append(officers, struct {
			function string
			userID   int64
		}{member.Function, member.UserID})
	}

	positions := make([]Position, 0, len(officers))
	for _, officer := range officers {
		user, err := s.identity.FetchUser(ctx, officer.userID, token)
		if err != nil {
			return nil, err
		}
		positions = append(positions, Position{Function: officer.function, Name: user.Name})
	}

	return positions, nil
}

func (s *service) notification(board *Board, bodyName string, positions []Position) *mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "A new board has been submitted for %s.\n\n", bodyName)
	fmt.Fprintf(&b, "Elected on: %s\n", board.ElectedDate)
	fmt.Fprintf(&b, "Term start: %s\n", board.StartDate)
	if board.EndDate != nil {
		fmt.Fprintf(&b, "Term end: %s\n", *board.EndDate)
	}
	b.WriteString("\nPositions:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- %s: %s\n", p.Function, p.Name)
	}
	if board.Message != nil && *board.Message != "" {
		fmt.Fprintf(&b, "\nMessage:\n%s\n", *board.Message)
	}

	return &mailer.Message{
		To:      s.recipients,
		Subject: "New board of " + bodyName,
		Body:    b.String(),
	}
}

func (s *service) ListBoards(ctx context.Context, filter ListFilter, sorting Sorting) ([]*Board, error) {
	cacheKey := listCacheKey(filter, sorting)
	if s.redisP != nil {
		if cached, err := s.redisP.Get(ctx, cacheKey); err == nil {
			var boards []*Board
			if err := json.Unmarshal([]byte(cached), &boards); err == nil {
				return boards, nil
			}
		} else if !redis.IsCacheMiss(err) {
			s.logger.Warnw("Board list cache read failed", "error", err)
		}
	}

	boards, err := s.repo.List(filter, sorting)
	if err != nil {
		return nil, err
	}

	if s.redisP != nil {
		if encoded, err := json.Marshal(boards); err == nil {
			if err := s.redisP.SetWithDefaultTTL(ctx, cacheKey, encoded); err != nil {
				s.logger.Warnw("Board list cache write failed", "error", err)
			}
		}
	}

	return boards, nil
}

func (s *service) GetBoard(ctx context.Context, id uint64) (*Board, error) {
	return s.repo.FindByID(id)
}

func (s *service) UpdateBoard(ctx context.Context, perms *core.Permissions, id uint64, input *BoardInput) (*Board, error) {
	board, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !perms.ManageBoards.For(board.BodyID) {
		return nil, ErrForbidden
	}

	input.Apply(board)
	if err := s.repo.Update(board); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	return board, nil
}

func (s *service) DeleteBoard(ctx context.Context, perms *core.Permissions, id uint64) (*Board, error) {
	board, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !perms.ManageBoards.For(board.BodyID) {
		return nil, ErrForbidden
	}

	if err := s.repo.Delete(board); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	return board, nil
}

func canManage(perms *core.Permissions, bodyID *int64) bool {
	if perms.ManageBoards.Global {
		return true
	}
	return bodyID != nil && perms.ManageBoards.For(*bodyID)
}

func listCacheKey(filter ListFilter, sorting Sorting) string {
	body := "all"
	if filter.BodyID != nil {
		body = fmt.Sprintf("%d", *filter.BodyID)
	}
	current := "any"
	if filter.CurrentOn != nil {
		current = filter.CurrentOn.String()
	}
	return fmt.Sprintf("boards:list:%s:%s:%s:%s", body, current, sorting.Field, sorting.Direction)
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.redisP == nil {
		return
	}
	if err := s.redisP.DeleteByPattern(ctx, "boards:list:*"); err != nil {
		s.logger.Warnw("Board list cache invalidation failed", "error", err)
	}
}
