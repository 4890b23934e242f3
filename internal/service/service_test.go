package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_api/internal/hash"
	"github.com/Skotchmaster/product_api/internal/models"
	"github.com/Skotchmaster/product_api/internal/mykafka"
	"github.com/Skotchmaster/product_api/internal/repo"
	"github.com/Skotchmaster/product_api/internal/testutil"
	"github.com/Skotchmaster/product_api/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
	topics []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event.(map[string]any))
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e["type"].(string))
	}
	return out
}

func newServices(t *testing.T) (*UserService, *ProductService, *recordingPublisher) {
	t.Helper()
	r := testutil.NewSQLiteRepo(t)
	pub := &recordingPublisher{}
	users := &UserService{Repo: r, Tokens: tokens.NewIssuer([]byte("svc-secret"), tokens.DefaultTTL), Events: pub}
	products := &ProductService{Repo: r, Events: pub}
	return users, products, pub
}

func register(t *testing.T, s *UserService, email, role string) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{
		Email: email, Password: "Secret123", PasswordConfirmation: "Secret123", Role: role,
	})
	require.NoError(t, err)
	return res
}

func assertKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, msg, se.Msg)
}

func TestRegister(t *testing.T) {
	users, _, pub := newServices(t)

	res := register(t, users, "a@example.com", models.RoleUser)
	assert.NotEmpty(t, res.User.ID)
	assert.True(t, hash.CheckPassword(res.User.PasswordHash, "Secret123"))

	claims, err := users.Tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.ID)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, []string{"user_registered"}, pub.types())
	assert.Equal(t, mykafka.TopicUserEvents, pub.topics[0])
}

func TestRegister_Rejects(t *testing.T) {
	users, _, _ := newServices(t)
	register(t, users, "dup@example.com", models.RoleUser)

	tests := []struct {
		name string
		in   RegisterInput
		kind error
		msg  string
	}{
		{"missing role", RegisterInput{Email: "x@example.com", Password: "a", PasswordConfirmation: "a"}, ErrValidation, MsgMissingFields},
		{"mismatch", RegisterInput{Email: "x@example.com", Password: "a", PasswordConfirmation: "b", Role: "user"}, ErrValidation, MsgPasswordMismatch},
		{"bad role", RegisterInput{Email: "x@example.com", Password: "a", PasswordConfirmation: "a", Role: "root"}, ErrValidation, MsgInvalidRole},
		{"duplicate", RegisterInput{Email: "dup@example.com", Password: "a", PasswordConfirmation: "a", Role: "admin"}, ErrConflict, MsgUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Register(context.Background(), tt.in)
			assertKind(t, err, tt.kind, tt.msg)
		})
	}
}

func TestLogin(t *testing.T) {
	users, _, pub := newServices(t)
	reg := register(t, users, "a@example.com", models.RoleAdmin)

	res, err := users.Login(context.Background(), "a@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.Contains(t, pub.types(), "user_logged_in")

	_, err = users.Login(context.Background(), "a@example.com", "wrong")
	assertKind(t, err, ErrInvalidCredentials, MsgInvalidCredentials)

	_, err = users.Login(context.Background(), "nobody@example.com", "Secret123")
	assertKind(t, err, ErrInvalidCredentials, MsgInvalidCredentials)
}

func TestUpdateUser(t *testing.T) {
	users, _, _ := newServices(t)
	ctx := context.Background()
	a := register(t, users, "a@example.com", models.RoleUser)
	b := register(t, users, "b@example.com", models.RoleUser)
	admin := register(t, users, "admin@example.com", models.RoleAdmin)

	newPass := "Changed1"
	empty := ""
	got, err := users.UpdateUser(ctx, a.User.ID, a.User.ID, UpdateUserInput{Password: &newPass, Email: &empty})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	_, err = users.Login(ctx, "a@example.com", "Changed1")
	require.NoError(t, err)

	_, err = users.UpdateUser(ctx, b.User.ID, a.User.ID, UpdateUserInput{Password: &newPass})
	assertKind(t, err, ErrForbidden, MsgUserForbidden)

	taken := "b@example.com"
	_, err = users.UpdateUser(ctx, a.User.ID, a.User.ID, UpdateUserInput{Email: &taken})
	assertKind(t, err, ErrConflict, MsgUserExists)

	role := models.RoleAdmin
	_, err = users.UpdateUser(ctx, a.User.ID, a.User.ID, UpdateUserInput{Role: &role})
	assertKind(t, err, ErrForbidden, MsgRoleForbidden)

	got, err = users.UpdateUser(ctx, admin.User.ID, a.User.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = users.UpdateUser(ctx, admin.User.ID, "missing", UpdateUserInput{})
	assertKind(t, err, ErrNotFound, MsgUserNotFound)
}

func TestUpdateUser_UsesStoredCallerRole(t *testing.T) {
	users, _, _ := newServices(t)
	ctx := context.Background()
	root := register(t, users, "root@example.com", models.RoleAdmin)
	ex := register(t, users, "ex@example.com", models.RoleAdmin)

	demoted := models.RoleUser
	_, err := users.UpdateUser(ctx, root.User.ID, ex.User.ID, UpdateUserInput{Role: &demoted})
	require.NoError(t, err)

	promoted := models.RoleAdmin
	_, err = users.UpdateUser(ctx, ex.User.ID, ex.User.ID, UpdateUserInput{Role: &promoted})
	assertKind(t, err, ErrForbidden, MsgRoleForbidden)

	newPass := "Hijack1"
	_, err = users.UpdateUser(ctx, ex.User.ID, root.User.ID, UpdateUserInput{Password: &newPass})
	assertKind(t, err, ErrForbidden, MsgUserForbidden)

	_, err = users.ListUsers(ctx, ex.User.ID)
	assertKind(t, err, ErrForbidden, MsgRoleForbidden)

	list, err := users.ListUsers(ctx, root.User.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := users.GetUser(ctx, ex.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestUpdateUser_MissingTargetIsNotFoundForAnyCaller(t *testing.T) {
	users, _, _ := newServices(t)
	a := register(t, users, "a@example.com", models.RoleUser)

	_, err := users.UpdateUser(context.Background(), a.User.ID, "missing", UpdateUserInput{})
	assertKind(t, err, ErrNotFound, MsgUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	users, _, pub := newServices(t)
	a := register(t, users, "a@example.com", models.RoleUser)

	require.NoError(t, users.DeleteUser(context.Background(), a.User.ID))
	assertKind(t, users.DeleteUser(context.Background(), a.User.ID), ErrNotFound, MsgUserNotFound)
	_, err := users.GetUser(context.Background(), a.User.ID)
	assertKind(t, err, ErrNotFound, MsgUserNotFound)
	assert.Contains(t, pub.types(), "user_deleted")
}

func TestProducts_OwnershipAndLifecycle(t *testing.T) {
	_, products, pub := newServices(t)
	ctx := context.Background()

	_, err := products.Create(ctx, "owner", ProductInput{Name: "", Description: "d", Price: 1, Tags: []string{}})
	assertKind(t, err, ErrValidation, MsgInvalidProduct)

	prod, err := products.Create(ctx, "owner", ProductInput{Name: "chair", Description: "oak", Price: 49.5, Tags: []string{"home"}})
	require.NoError(t, err)
	assert.Equal(t, "owner", prod.CreatedBy)

	name := "table"
	_, err = products.Update(ctx, "intruder", prod.ID, ProductPatch{Name: &name})
	assertKind(t, err, ErrForbidden, MsgProductUpdate)

	updated, err := products.Update(ctx, "owner", prod.ID, ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "table", updated.Name)
	assert.Equal(t, "oak", updated.Description)
	assert.Equal(t, "owner", updated.CreatedBy)

	assertKind(t, products.Delete(ctx, "intruder", prod.ID), ErrForbidden, MsgProductDelete)
	require.NoError(t, products.Delete(ctx, "owner", prod.ID))
	assertKind(t, products.Delete(ctx, "owner", prod.ID), ErrNotFound, "cannot find product with the ID of "+prod.ID)

	got, err := products.Get(ctx, prod.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, pub.types())
}

func TestProducts_PublishFailureIsNotFatal(t *testing.T) {
	_, products, pub := newServices(t)
	pub.err = errors.New("broker down")

	prod, err := products.Create(context.Background(), "owner", ProductInput{Name: "n", Description: "d", Price: 0, Tags: []string{}})
	require.NoError(t, err)
	assert.NotEmpty(t, prod.ID)
}

func TestProducts_ListByOwner(t *testing.T) {
	_, products, _ := newServices(t)
	ctx := context.Background()
	for _, owner := range []string{"a", "b", "a"} {
		_, err := products.Create(ctx, owner, ProductInput{Name: "n", Description: "d", Price: 1, Tags: []string{}})
		require.NoError(t, err)
	}

	total, items, err := products.List(ctx, repo.ProductFilter{CreatedBy: "a"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}

func TestProducts_SearchDisabled(t *testing.T) {
	_, products, _ := newServices(t)
	_, _, err := products.Search(context.Background(), "x", 0, 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
