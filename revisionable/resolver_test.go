package revisionable_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/revision-history/revisionable"
)

type testCategory struct {
	ID        uint
	Name      string
	DeletedAt gorm.DeletedAt
}

func (c *testCategory) IdentifiableName() string { return c.Name }

type testStatus struct {
	ID    uint
	Label string
}

func (s *testStatus) IdentifiableName() string { return s.Label }

func (s *testStatus) RevisionMutators() map[string]revisionable.MutatorFunc {
	return map[string]revisionable.MutatorFunc{
		"published_status_id": func(v string) string { return "[" + v + "]" },
	}
}

type testAuthor struct {
	ID    uint
	Email string
}

type testComment struct {
	ID        uint
	Body      string
	DeletedAt gorm.DeletedAt
}

func (c *testComment) IdentifiableName() string { return c.Body }

type testPost struct {
	ID                uint
	Title             string
	Views             int
	IsPublic          bool
	Attachment        string
	CategoryID        *uint
	Category          *testCategory
	PublishedStatusID *uint
	PublishedStatus   *testStatus
	AuthorID          *uint
	Author            *testAuthor
}

func (p *testPost) RevisionMutators() map[string]revisionable.MutatorFunc {
	return map[string]revisionable.MutatorFunc{
		"title": strings.ToUpper,
	}
}

type fakeIdentity struct {
	users map[uint]string
}

func (f fakeIdentity) FindUserByID(_ context.Context, id uint) (any, error) {
	name, ok := f.users[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return name, nil
}

// handBuiltStore serves kinds that never went through a Registry.
type handBuiltStore struct {
	kinds map[string]*revisionable.Kind
}

func (s handBuiltStore) ResolveAlias(typeName string) (*revisionable.Kind, error) {
	kind, ok := s.kinds[typeName]
	if !ok {
		return nil, revisionable.ErrUnknownEntityType
	}
	return kind, nil
}

func (s handBuiltStore) LoadByID(context.Context, *revisionable.Kind, string, bool) (any, error) {
	return nil, revisionable.ErrInstanceNotFound
}

func (s handBuiltStore) HasRelationAccessor(*revisionable.Kind, string) bool { return false }

func (s handBuiltStore) RelationTarget(*revisionable.Kind, string) (*revisionable.Kind, error) {
	return nil, revisionable.ErrRelationNotFound
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&testCategory{}, &testStatus{}, &testAuthor{}, &testComment{}, &testPost{},
	))

	require.NoError(t, db.Create(&testCategory{ID: 1, Name: "News"}).Error)
	require.NoError(t, db.Create(&testStatus{ID: 2, Label: "Live"}).Error)
	require.NoError(t, db.Create(&testAuthor{ID: 3, Email: "ann@example.com"}).Error)
	require.NoError(t, db.Create(&testComment{ID: 5, Body: "Great post"}).Error)
	require.NoError(t, db.Delete(&testComment{}, 5).Error)
	require.NoError(t, db.Create(&testPost{ID: 10, Title: "Hello"}).Error)
	return db
}

func setupRegistry(t *testing.T) *revisionable.Registry {
	t.Helper()
	reg := revisionable.NewRegistry()
	kinds := []revisionable.Kind{
		{Name: "Category", Model: &testCategory{}, NullString: "nothing", UnknownString: "unknown"},
		{Name: "Status", Model: &testStatus{}, NullString: "no status", UnknownString: "unknown"},
		{Name: "Author", Model: &testAuthor{}, NullString: "nobody", UnknownString: "unknown"},
		{Name: "Comment", Model: &testComment{}, NullString: "nothing", UnknownString: "deleted comment"},
		{
			Name:          "Post",
			Model:         &testPost{},
			NullString:    "nothing",
			UnknownString: "unknown",
			FormattedFields: map[string]string{
				"is_public":   "boolean:Yes|No",
				"views":       "string:Views: %s",
				"category_id": "string:Category: %s",
			},
			FieldNames:        map[string]string{"views": "View count"},
			PolymorphicFields: []string{"attachment"},
		},
	}
	for _, k := range kinds {
		require.NoError(t, reg.Register(k))
	}
	require.NoError(t, reg.Alias("comment", "Comment"))
	require.NoError(t, reg.Alias("blog_post", "Post"))
	return reg
}

func setupResolver(t *testing.T, opts ...revisionable.Option) (*gorm.DB, *revisionable.Resolver) {
	db := setupTestDB(t)
	store := revisionable.NewGormStore(db, setupRegistry(t))
	opts = append([]revisionable.Option{revisionable.WithLogger(quietLogger())}, opts...)
	return db, revisionable.NewResolver(store, nil, opts...)
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }

func TestResolverValue(t *testing.T) {
	_, resolver := setupResolver(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		typ       string
		key       string
		value     *string
		want      string
		wantFound bool
	}{
		{"plain without rule", "Post", "body", strPtr("text"), "text", true},
		{"plain null without rule", "Post", "body", nil, "", false},
		{"plain with string rule", "Post", "views", strPtr("10"), "Views: 10", true},
		{"boolean truthy", "Post", "is_public", strPtr("1"), "Yes", true},
		{"boolean falsy", "Post", "is_public", strPtr("0"), "No", true},
		{"owner mutator", "Post", "title", strPtr("hello"), "HELLO", true},
		{"owner mutator null", "Post", "title", nil, "", false},
		{"alias type", "blog_post", "views", strPtr("3"), "Views: 3", true},
		{"relation found", "Post", "category_id", strPtr("1"), "Category: News", true},
		{"relation null", "Post", "category_id", nil, "nothing", true},
		{"relation empty", "Post", "category_id", strPtr(""), "nothing", true},
		{"relation missing", "Post", "category_id", strPtr("999"), "Category: unknown", true},
		{"camel case relation with mutator", "Post", "published_status_id", strPtr("2"), "[Live]", true},
		{"camel case relation null", "Post", "published_status_id", nil, "no status", true},
		{"related model not nameable", "Post", "author_id", strPtr("3"), "3", true},
		{"no relation for suffix", "Post", "missing_id", strPtr("4"), "4", true},
		{"suffix not at end", "Post", "category_identifier", strPtr("1"), "1", true},
		{"polymorphic archived", "Post", "attachment", strPtr(`{"type":"comment","id":5}`), "Great post", true},
		{"polymorphic string id", "Post", "attachment", strPtr(`{"type":"Comment","id":"5"}`), "Great post", true},
		{"polymorphic malformed", "Post", "attachment", strPtr("not json"), "", false},
		{"polymorphic trailing data", "Post", "attachment", strPtr(`{"type":"Comment","id":5} trailing garbage`), "", false},
		{"polymorphic second object", "Post", "attachment", strPtr(`{"type":"Comment","id":5}{}`), "", false},
		{"polymorphic trailing whitespace", "Post", "attachment", strPtr("{\"type\":\"Comment\",\"id\":5}\n "), "Great post", true},
		{"polymorphic null", "Post", "attachment", nil, "", false},
		{"polymorphic not nameable", "Post", "attachment", strPtr(`{"type":"Author","id":3}`), "3", true},
		{"polymorphic unknown type", "Post", "attachment", strPtr(`{"type":"Ghost","id":7}`), "7", true},
		{"polymorphic missing instance", "Post", "attachment", strPtr(`{"type":"Comment","id":404}`), "deleted comment", true},
		{"unknown revisionable type", "Ghost", "is_public", strPtr("1"), "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev := &revisionable.Revision{RevisionableType: tt.typ, RevisionableID: 10, Key: tt.key, NewValue: tt.value}
			got, found := resolver.NewValue(ctx, rev)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverWithHandBuiltKinds(t *testing.T) {
	store := handBuiltStore{kinds: map[string]*revisionable.Kind{
		"Post": {
			Name:              "Post",
			Model:             &testPost{},
			NullString:        "nothing",
			UnknownString:     "unknown",
			PolymorphicFields: []string{"attachment"},
		},
		"Comment": {Name: "Comment", Model: &testComment{}, NullString: "nothing", UnknownString: "gone"},
		"Broken":  {Name: "Broken", NullString: "nothing", UnknownString: "unknown"},
	}}
	resolver := revisionable.NewResolver(store, nil, revisionable.WithLogger(quietLogger()))
	ctx := context.Background()

	tests := []struct {
		name  string
		typ   string
		key   string
		value *string
		want  string
	}{
		{"plain with mutator", "Post", "title", strPtr("hi"), "HI"},
		{"relation not found", "Post", "category_id", strPtr("1"), "1"},
		{"polymorphic miss", "Post", "attachment", strPtr(`{"type":"Comment","id":5}`), "gone"},
		{"kind without model", "Broken", "title", strPtr("hi"), "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev := &revisionable.Revision{RevisionableType: tt.typ, Key: tt.key, NewValue: tt.value}
			var got string
			assert.NotPanics(t, func() { got, _ = resolver.NewValue(ctx, rev) })
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"Post"}, resolver.StoredTypeNames("Post"))
}

func TestResolverStoredTypeNames(t *testing.T) {
	_, resolver := setupResolver(t)

	assert.Equal(t, []string{"Post", "blog_post"}, resolver.StoredTypeNames("Post"))
	assert.Equal(t, []string{"Post", "blog_post"}, resolver.StoredTypeNames("blog_post"))
	assert.Equal(t, []string{"Ghost"}, resolver.StoredTypeNames("Ghost"))
}

func TestResolverOldAndNewAreSymmetric(t *testing.T) {
	_, resolver := setupResolver(t)
	ctx := context.Background()

	rev := &revisionable.Revision{
		RevisionableType: "Post",
		RevisionableID:   10,
		Key:              "category_id",
		OldValue:         nil,
		NewValue:         strPtr("1"),
	}
	old, ok := resolver.OldValue(ctx, rev)
	assert.True(t, ok)
	assert.Equal(t, "nothing", old)

	newValue, ok := resolver.NewValue(ctx, rev)
	assert.True(t, ok)
	assert.Equal(t, "Category: News", newValue)
}

func TestResolverIsIdempotent(t *testing.T) {
	_, resolver := setupResolver(t)
	ctx := context.Background()

	rev := &revisionable.Revision{RevisionableType: "Post", RevisionableID: 10, Key: "category_id", NewValue: strPtr("1")}
	first, _ := resolver.NewValue(ctx, rev)
	second, _ := resolver.NewValue(ctx, rev)
	assert.Equal(t, first, second)
}

func TestResolverIsLiveLookup(t *testing.T) {
	db, resolver := setupResolver(t)
	ctx := context.Background()

	rev := &revisionable.Revision{RevisionableType: "Post", RevisionableID: 10, Key: "category_id", NewValue: strPtr("1")}
	before, _ := resolver.NewValue(ctx, rev)
	assert.Equal(t, "Category: News", before)

	require.NoError(t, db.Model(&testCategory{}).Where("id = ?", 1).Update("name", "Sport").Error)
	after, _ := resolver.NewValue(ctx, rev)
	assert.Equal(t, "Category: Sport", after)

	// soft-deleted related rows are not matched on the relation path
	require.NoError(t, db.Delete(&testCategory{}, 1).Error)
	deleted, _ := resolver.NewValue(ctx, rev)
	assert.Equal(t, "Category: unknown", deleted)
}

func TestResolverFieldName(t *testing.T) {
	_, resolver := setupResolver(t)

	tests := []struct {
		typ, key, want string
	}{
		{"Post", "views", "View count"},
		{"Post", "category_id", "category"},
		{"Post", "owner_id_old", "owner_old"},
		{"Post", "title", "title"},
		{"Post", "_idx", "_idx"},
		{"Ghost", "user_id", "user"},
	}
	for _, tt := range tests {
		rev := &revisionable.Revision{RevisionableType: tt.typ, Key: tt.key}
		assert.Equal(t, tt.want, resolver.FieldName(rev), tt.key)
	}
}

func TestResolverFormat(t *testing.T) {
	_, resolver := setupResolver(t)

	assert.Equal(t, "Yes", resolver.Format("Post", "is_public", "true"))
	assert.Equal(t, "No", resolver.Format("Post", "is_public", "false"))
	assert.Equal(t, "raw", resolver.Format("Post", "body", "raw"))
	assert.Equal(t, "1", resolver.Format("Ghost", "is_public", "1"))
}

func TestResolverSubjectOf(t *testing.T) {
	_, resolver := setupResolver(t)
	ctx := context.Background()

	subject, ok := resolver.SubjectOf(ctx, &revisionable.Revision{RevisionableType: "Post", RevisionableID: 10})
	require.True(t, ok)
	post, isPost := subject.(*testPost)
	require.True(t, isPost)
	assert.Equal(t, "Hello", post.Title)

	_, ok = resolver.SubjectOf(ctx, &revisionable.Revision{RevisionableType: "Post", RevisionableID: 11})
	assert.False(t, ok)

	_, ok = resolver.SubjectOf(ctx, &revisionable.Revision{RevisionableType: "Ghost", RevisionableID: 10})
	assert.False(t, ok)
}

func TestResolverActorResponsible(t *testing.T) {
	ctx := context.Background()
	auth := revisionable.AuthConfig{
		DefaultGuard: "web",
		Guards:       map[string]string{"web": "users"},
		Providers:    map[string]string{"users": "Author"},
	}

	t.Run("guard provider model", func(t *testing.T) {
		_, resolver := setupResolver(t, revisionable.WithAuthConfig(auth))
		user, ok := resolver.ActorResponsible(ctx, &revisionable.Revision{UserID: uintPtr(3)})
		require.True(t, ok)
		assert.Equal(t, "ann@example.com", user.(*testAuthor).Email)
	})

	t.Run("explicit model wins", func(t *testing.T) {
		cfg := auth
		cfg.Model = "Comment"
		_, resolver := setupResolver(t, revisionable.WithAuthConfig(cfg))
		_, ok := resolver.ActorResponsible(ctx, &revisionable.Revision{UserID: uintPtr(3)})
		assert.False(t, ok)
	})

	t.Run("no user id", func(t *testing.T) {
		_, resolver := setupResolver(t, revisionable.WithAuthConfig(auth))
		_, ok := resolver.ActorResponsible(ctx, &revisionable.Revision{})
		assert.False(t, ok)
	})

	t.Run("missing user", func(t *testing.T) {
		_, resolver := setupResolver(t, revisionable.WithAuthConfig(auth))
		_, ok := resolver.ActorResponsible(ctx, &revisionable.Revision{UserID: uintPtr(99)})
		assert.False(t, ok)
	})

	t.Run("no user model configured", func(t *testing.T) {
		_, resolver := setupResolver(t)
		_, ok := resolver.ActorResponsible(ctx, &revisionable.Revision{UserID: uintPtr(3)})
		assert.False(t, ok)
	})

	t.Run("identity provider first", func(t *testing.T) {
		identity := fakeIdentity{users: map[uint]string{3: "ann"}}
		_, resolver := setupResolver(t, revisionable.WithAuthConfig(auth), revisionable.WithIdentityProvider(identity))
		user, ok := resolver.ActorResponsible(ctx, &revisionable.Revision{UserID: uintPtr(3)})
		require.True(t, ok)
		assert.Equal(t, "ann", user)

		_, ok = resolver.ActorResponsible(ctx, &revisionable.Revision{UserID: uintPtr(4)})
		assert.False(t, ok)
	})
}
