package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"boards-backend/internal/providers/core"
	"boards-backend/internal/providers/mailer"

	"go.uber.org/zap"
)

// --- mocks ---

type mockRepo struct {
	createFn func(board *Board) error
	listFn   func(filter ListFilter, sorting Sorting) ([]*Board, error)
	findFn   func(id uint64) (*Board, error)
	updateFn func(board *Board) error
	deleteFn func(board *Board) error

	created    []*Board
	updated    []*Board
	deleted    []*Board
	txRan      bool
	txReturned error
}

func (m *mockRepo) Create(board *Board) error {
	if m.createFn != nil {
		return m.createFn(board)
	}
	board.ID = uint64(len(m.created) + 1)
	m.created = append(m.created, board)
	return nil
}

func (m *mockRepo) List(filter ListFilter, sorting Sorting) ([]*Board, error) {
	if m.listFn != nil {
		return m.listFn(filter, sorting)
	}
	return []*Board{}, nil
}

func (m *mockRepo) FindByID(id uint64) (*Board, error) {
	if m.findFn != nil {
		return m.findFn(id)
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(board *Board) error {
	if m.updateFn != nil {
		return m.updateFn(board)
	}
	m.updated = append(m.updated, board)
	return nil
}

func (m *mockRepo) Delete(board *Board) error {
	if m.deleteFn != nil {
		return m.deleteFn(board)
	}
	m.deleted = append(m.deleted, board)
	return nil
}

func (m *mockRepo) Count() (int64, error) {
	return int64(len(m.created)), nil
}

func (m *mockRepo) Transaction(fn func(txRepo Repository) error) error {
	m.txRan = true
	m.txReturned = fn(m)
	return m.txReturned
}

type mockIdentity struct {
	fetchBodyFn func(ctx context.Context, bodyID int64, token string) (*core.Body, error)
	fetchUserFn func(ctx context.Context, userID int64, token string) (*core.User, error)

	bodyCalls int
	userCalls []int64
}

func (m *mockIdentity) FetchBody(ctx context.Context, bodyID int64, token string) (*core.Body, error) {
	m.bodyCalls++
	if m.fetchBodyFn != nil {
		return m.fetchBodyFn(ctx, bodyID, token)
	}
	return &core.Body{BodyID: bodyID, BodyName: "AEGEE-Test"}, nil
}

func (m *mockIdentity) FetchUser(ctx context.Context, userID int64, token string) (*core.User, error) {
	m.userCalls = append(m.userCalls, userID)
	if m.fetchUserFn != nil {
		return m.fetchUserFn(ctx, userID, token)
	}
	name := fmt.Sprintf("User %d", userID)
	return &core.User{UserID: userID, FirstName: name, LastName: "Tester", Name: name + " Tester"}, nil
}

type mockMailer struct {
	sendFn func(ctx context.Context, msg *mailer.Message) error
	sent   []*mailer.Message
}

func (m *mockMailer) Send(ctx context.Context, msg *mailer.Message) error {
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	m.sent = append(m.sent, msg)
	return nil
}

// --- helpers ---

func newTestService(repo *mockRepo, identity *mockIdentity, mail *mockMailer) Service {
	return NewService(repo, identity, mail, nil, []string{"netcom@example.org"}, zap.NewNop())
}

func globalPerms() *core.Permissions {
	return &core.Permissions{ManageBoards: core.ManageBoards{Global: true, PerBody: map[int64]bool{}}}
}

func noPerms() *core.Permissions {
	return &core.Permissions{ManageBoards: core.ManageBoards{PerBody: map[int64]bool{}}}
}

func validInput() *BoardInput {
	bodyID := int64(42)
	elected := NewDate(Today().AddDate(0, -1, 0))
	start := Today()
	president, secretary, treasurer := int64(1), int64(2), int64(3)
	return &BoardInput{
		BodyID:      &bodyID,
		ElectedDate: &elected,
		StartDate:   &start,
		President:   &president,
		Secretary:   &secretary,
		Treasurer:   &treasurer,
	}
}

// --- creation workflow ---

func TestCreateBoard_ForbiddenBeforeAnyLookup(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{
		fetchBodyFn: func(ctx context.Context, bodyID int64, token string) (*core.Body, error) {
			return nil, &core.LookupError{What: "body", Err: errors.New("core is down")}
		},
	}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	_, err := svc.CreateBoard(context.Background(), "token", noPerms(), validInput())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if identity.bodyCalls != 0 || len(identity.userCalls) != 0 {
		t.Fatal("permission check must precede every external lookup")
	}
	if len(repo.created) != 0 || len(mail.sent) != 0 {
		t.Fatal("nothing may be persisted or sent")
	}
}

func TestCreateBoard_PerBodyPermission(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	perms := noPerms()
	perms.ManageBoards.PerBody[42] = true

	created, err := svc.CreateBoard(context.Background(), "token", perms, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}
}

func TestCreateBoard_PerBodyPermissionForOtherBody(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockIdentity{}, &mockMailer{})

	perms := noPerms()
	perms.ManageBoards.PerBody[7] = true

	_, err := svc.CreateBoard(context.Background(), "token", perms, validInput())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateBoard_ValidationErrors(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	input := validInput()
	future := NewDate(Today().AddDate(0, 0, 2))
	input.ElectedDate = &future

	_, err := svc.CreateBoard(context.Background(), "token", globalPerms(), input)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if _, ok := verrs["elected_date"]; !ok {
		t.Fatalf("expected elected_date error, got %v", verrs)
	}
	if len(repo.created) != 0 || len(mail.sent) != 0 {
		t.Fatal("nothing may be persisted or sent on validation failure")
	}
}

func TestCreateBoard_BodyLookupFailure(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{
		fetchBodyFn: func(ctx context.Context, bodyID int64, token string) (*core.Body, error) {
			return nil, &core.LookupError{What: "body", Err: errors.New("connection refused")}
		},
	}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	_, err := svc.CreateBoard(context.Background(), "token", globalPerms(), validInput())
	var lookupErr *core.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("no board may exist after a body lookup failure")
	}
	if len(mail.sent) != 0 {
		t.Fatal("no mail may be sent after a body lookup failure")
	}
}

func TestCreateBoard_OfficerLookupFailure(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{
		fetchUserFn: func(ctx context.Context, userID int64, token string) (*core.User, error) {
			if userID == 2 {
				return nil, &core.LookupError{What: "user", Err: errors.New("unsuccessful response")}
			}
			return &core.User{UserID: userID, Name: "Someone"}, nil
		},
	}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	_, err := svc.CreateBoard(context.Background(), "token", globalPerms(), validInput())
	var lookupErr *core.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if len(repo.created) != 0 || len(mail.sent) != 0 {
		t.Fatal("no board and no mail after an officer lookup failure")
	}
}

func TestCreateBoard_OfficerResolutionOrder(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	input := validInput()
	input.OtherMembers = []OtherMember{
		{Function: "Webmaster", UserID: 9},
		{Function: "Fundraiser", UserID: 8},
	}

	if _, err := svc.CreateBoard(context.Background(), "token", globalPerms(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{1, 2, 3, 9, 8}
	if len(identity.userCalls) != len(want) {
		t.Fatalf("expected %d lookups, got %d", len(want), len(identity.userCalls))
	}
	for i, id := range want {
		if identity.userCalls[i] != id {
			t.Fatalf("lookup %d: expected user %d, got %d", i, id, identity.userCalls[i])
		}
	}
}

func TestCreateBoard_MailerFailureRollsBack(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{}
	mail := &mockMailer{
		sendFn: func(ctx context.Context, msg *mailer.Message) error {
			return errors.New("mailer rejected the message")
		},
	}
	svc := newTestService(repo, identity, mail)

	_, err := svc.CreateBoard(context.Background(), "token", globalPerms(), validInput())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !repo.txRan {
		t.Fatal("the insert and the mail must share one transaction")
	}
	if repo.txReturned == nil {
		t.Fatal("a mail failure must abort the transaction")
	}
}

func TestCreateBoard_Success(t *testing.T) {
	repo := &mockRepo{}
	identity := &mockIdentity{}
	mail := &mockMailer{}
	svc := newTestService(repo, identity, mail)

	input := validInput()
	input.OtherMembers = []OtherMember{{Function: "Webmaster", UserID: 9}}

	created, err := svc.CreateBoard(context.Background(), "token", globalPerms(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if created.BodyName != "AEGEE-Test" {
		t.Fatalf("expected resolved body name, got %q", created.BodyName)
	}

	wantFunctions := []string{"President", "Secretary", "Treasurer", "Webmaster"}
	if len(created.Positions) != len(wantFunctions) {
		t.Fatalf("expected %d positions, got %d", len(wantFunctions), len(created.Positions))
	}
	for i, fn := range wantFunctions {
		if created.Positions[i].Function != fn {
			t.Fatalf("position %d: expected %s, got %s", i, fn, created.Positions[i].Function)
		}
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(repo.created))
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected exactly one mail, got %d", len(mail.sent))
	}

	msg := mail.sent[0]
	if len(msg.To) != 1 || msg.To[0] != "netcom@example.org" {
		t.Fatalf("unexpected recipients %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "AEGEE-Test") {
		t.Fatalf("subject must name the body, got %q", msg.Subject)
	}
	for _, fn := range wantFunctions {
		if !strings.Contains(msg.Body, fn) {
			t.Fatalf("mail body must list %s:\n%s", fn, msg.Body)
		}
	}
}

// --- read/update/delete ---

func TestListBoards_PassesFilterAndSorting(t *testing.T) {
	var gotFilter ListFilter
	var gotSorting Sorting
	repo := &mockRepo{
		listFn: func(filter ListFilter, sorting Sorting) ([]*Board, error) {
			gotFilter = filter
			gotSorting = sorting
			return []*Board{}, nil
		},
	}
	svc := newTestService(repo, &mockIdentity{}, &mockMailer{})

	bodyID := int64(5)
	boards, err := svc.ListBoards(context.Background(), ListFilter{BodyID: &bodyID}, Sorting{Field: "start_date", Direction: "desc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if boards == nil {
		t.Fatal("list must never be nil")
	}
	if gotFilter.BodyID == nil || *gotFilter.BodyID != 5 {
		t.Fatalf("filter not passed: %+v", gotFilter)
	}
	if gotSorting.Field != "start_date" {
		t.Fatalf("sorting not passed: %+v", gotSorting)
	}
}

func TestUpdateBoard_MessageOnly(t *testing.T) {
	today := Today()
	existing := validBoard(today)
	existing.ID = 11
	repo := &mockRepo{
		findFn: func(id uint64) (*Board, error) {
			if id != 11 {
				return nil, ErrNotFound
			}
			return existing, nil
		},
	}
	svc := newTestService(repo, &mockIdentity{}, &mockMailer{})

	perms := noPerms()
	perms.ManageBoards.PerBody[existing.BodyID] = true

	message := "updated message"
	updated, err := svc.UpdateBoard(context.Background(), perms, 11, &BoardInput{Message: &message})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Message == nil || *updated.Message != "updated message" {
		t.Fatalf("message not applied: %v", updated.Message)
	}
	if updated.President != 1 || updated.BodyID != 42 {
		t.Fatal("other fields must stay unchanged")
	}
	if len(repo.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(repo.updated))
	}
}

func TestUpdateBoard_ForbiddenForOtherBody(t *testing.T) {
	today := Today()
	existing := validBoard(today)
	existing.ID = 11
	repo := &mockRepo{
		findFn: func(id uint64) (*Board, error) { return existing, nil },
	}
	svc := newTestService(repo, &mockIdentity{}, &mockMailer{})

	perms := noPerms()
	perms.ManageBoards.PerBody[999] = true

	message := "nope"
	_, err := svc.UpdateBoard(context.Background(), perms, 11, &BoardInput{Message: &message})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatal("nothing may be updated")
	}
}

func TestUpdateBoard_NotFound(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockIdentity{}, &mockMailer{})

	message := "x"
	_, err := svc.UpdateBoard(context.Background(), globalPerms(), 404, &BoardInput{Message: &message})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBoard(t *testing.T) {
	today := Today()
	existing := validBoard(today)
	existing.ID = 3
	repo := &mockRepo{
		findFn: func(id uint64) (*Board, error) { return existing, nil },
	}
	svc := newTestService(repo, &mockIdentity{}, &mockMailer{})

	deleted, err := svc.DeleteBoard(context.Background(), globalPerms(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted.ID != 3 {
		t.Fatalf("expected the removed record back, got %+v", deleted)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one delete, got %d", len(repo.deleted))
	}
}

func TestDeleteBoard_Forbidden(t *testing.T) {
	today := Today()
	existing := validBoard(today)
	repo := &mockRepo{
		findFn: func(id uint64) (*Board, error) { return existing, nil },
	}
	svc := newTestService(repo, &mockIdentity{}, &mockMailer{})

	_, err := svc.DeleteBoard(context.Background(), noPerms(), 3)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("nothing may be deleted")
	}
}
