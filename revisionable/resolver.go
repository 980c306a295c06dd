package revisionable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/sirupsen/logrus"
)

const idSuffix = "_id"

// Resolver turns stored revision values into display strings.
type Resolver struct {
	store     EntityStore
	formatter *FieldFormatter
	auth      AuthConfig
	identity  IdentityProvider
	logger    logrus.FieldLogger
}

type Option func(*Resolver)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func WithAuthConfig(cfg AuthConfig) Option {
	return func(r *Resolver) { r.auth = cfg }
}

// WithIdentityProvider installs a user lookup that takes precedence over the
// auth guard configuration.
func WithIdentityProvider(p IdentityProvider) Option {
	return func(r *Resolver) { r.identity = p }
}

func NewResolver(store EntityStore, formatter *FieldFormatter, opts ...Option) *Resolver {
	if formatter == nil {
		formatter = NewFieldFormatter()
	}
	r := &Resolver{
		store:     store,
		formatter: formatter,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) OldValue(ctx context.Context, rev *Revision) (string, bool) {
	return r.Value(ctx, rev, Old)
}

func (r *Resolver) NewValue(ctx context.Context, rev *Revision) (string, bool) {
	return r.Value(ctx, rev, New)
}

// Value resolves one side of a revision. The boolean is false when there is no
// value to show. Lookup failures never surface; they are logged and the stored
// value is formatted as is.
func (r *Resolver) Value(ctx context.Context, rev *Revision, which Which) (string, bool) {
	raw := rev.raw(which)
	log := r.logger.WithFields(logrus.Fields{
		"revision_id": rev.ID,
		"type":        rev.RevisionableType,
		"key":         rev.Key,
		"which":       which.String(),
	})

	kind, err := r.store.ResolveAlias(rev.RevisionableType)
	if err != nil {
		log.WithError(err).Info("revisionable: returning raw value")
		return deref(raw)
	}

	value, handled, err := r.tryResolveRelation(ctx, kind, rev.Key, raw)
	switch {
	case errors.Is(err, ErrRelationNotFound):
		log.WithError(err).Debug("revisionable: no relation for key")
	case err != nil:
		log.WithError(err).Info("revisionable: relation lookup failed")
	case handled:
		return deref(value)
	}

	value, handled, err = r.tryResolvePolymorphic(ctx, kind, rev.Key, raw)
	if err != nil {
		log.WithError(err).Info("revisionable: polymorphic lookup failed")
	}
	if handled {
		return deref(value)
	}

	return deref(r.plainValue(kind, rev.Key, raw))
}

func isRelated(key string) bool {
	return strings.HasSuffix(key, idSuffix)
}

// relationAccessor finds the relation for name, trying the name as given and
// then its camel-case form (published_status -> PublishedStatus).
func (r *Resolver) relationAccessor(kind *Kind, name string) (string, error) {
	if name != "" && r.store.HasRelationAccessor(kind, name) {
		return name, nil
	}
	camel := strcase.ToCamel(name)
	if camel != "" && r.store.HasRelationAccessor(kind, camel) {
		return camel, nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrRelationNotFound, camel, kind.Name)
}

func (r *Resolver) tryResolveRelation(ctx context.Context, kind *Kind, key string, raw *string) (*string, bool, error) {
	if !isRelated(key) {
		return nil, false, nil
	}

	accessor, err := r.relationAccessor(kind, strings.TrimSuffix(key, idSuffix))
	if err != nil {
		return nil, false, err
	}
	related, err := r.store.RelationTarget(kind, accessor)
	if err != nil {
		return nil, false, err
	}

	if raw == nil || *raw == "" {
		return &related.NullString, true, nil
	}

	instance, err := r.store.LoadByID(ctx, related, *raw, false)
	if errors.Is(err, ErrInstanceNotFound) {
		return r.format(kind, key, &related.UnknownString), true, nil
	}
	if err != nil {
		return nil, false, err
	}

	named, ok := instance.(Nameable)
	if !ok {
		return nil, false, nil
	}
	name := named.IdentifiableName()
	if mutate, ok := mutatorFor(instance, key); ok {
		name = mutate(name)
	}
	return r.format(kind, key, &name), true, nil
}

type polymorphicRef struct {
	Type string `json:"type"`
	ID   any    `json:"id"`
}

func parsePolymorphic(raw *string) (polymorphicRef, error) {
	var ref polymorphicRef
	if raw == nil || *raw == "" {
		return ref, fmt.Errorf("%w: empty", ErrMalformedPolymorphicPayload)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(*raw)))
	dec.UseNumber()
	if err := dec.Decode(&ref); err != nil {
		return ref, fmt.Errorf("%w: %v", ErrMalformedPolymorphicPayload, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return ref, fmt.Errorf("%w: trailing data", ErrMalformedPolymorphicPayload)
	}
	if ref.Type == "" || ref.ID == nil {
		return ref, fmt.Errorf("%w: missing type or id", ErrMalformedPolymorphicPayload)
	}
	return ref, nil
}

func (r *Resolver) tryResolvePolymorphic(ctx context.Context, kind *Kind, key string, raw *string) (*string, bool, error) {
	if !kind.IsPolymorphic(key) {
		return nil, false, nil
	}

	ref, err := parsePolymorphic(raw)
	if err != nil {
		return nil, true, err
	}
	id := fmt.Sprint(ref.ID)

	target, err := r.store.ResolveAlias(ref.Type)
	if err != nil {
		return &id, true, nil
	}
	if _, ok := target.New().(Nameable); !ok {
		return &id, true, nil
	}

	instance, err := r.store.LoadByID(ctx, target, id, true)
	if errors.Is(err, ErrInstanceNotFound) {
		return r.format(kind, key, &target.UnknownString), true, err
	}
	if err != nil {
		return nil, false, err
	}

	name := instance.(Nameable).IdentifiableName()
	return r.format(kind, key, &name), true, nil
}

// plainValue runs the owner's mutator and formatting rule. A null value skips
// the mutator.
func (r *Resolver) plainValue(kind *Kind, key string, raw *string) *string {
	if raw == nil {
		return r.format(kind, key, nil)
	}
	if mutate, ok := kind.mutator(key); ok {
		v := mutate(*raw)
		return r.format(kind, key, &v)
	}
	return r.format(kind, key, raw)
}

// format applies the kind's formatting rule for key. A nil value stays nil when
// there is no rule.
func (r *Resolver) format(kind *Kind, key string, value *string) *string {
	if _, ok := kind.FormattedFields[key]; !ok {
		return value
	}
	out := r.formatter.Format(key, derefString(value), kind.FormattedFields)
	return &out
}

// Format renders value with the formatting rules of the named type.
func (r *Resolver) Format(typeName, key, value string) string {
	kind, err := r.store.ResolveAlias(typeName)
	if err != nil {
		return value
	}
	return derefString(r.format(kind, key, &value))
}

// StoredTypeNames lists every revisionable_type value that resolves to the same
// kind as typeName: the kind's name and its aliases. Unknown names are returned
// as given.
func (r *Resolver) StoredTypeNames(typeName string) []string {
	kind, err := r.store.ResolveAlias(typeName)
	if err != nil {
		return []string{typeName}
	}
	if namer, ok := r.store.(interface{ TypeNames(*Kind) []string }); ok {
		return namer.TypeNames(kind)
	}
	if kind.Name == typeName {
		return []string{typeName}
	}
	return []string{kind.Name, typeName}
}

// FieldName returns the display name of the changed field. Unlike relation
// detection, any "_id" after the first character is removed, not only a suffix.
func (r *Resolver) FieldName(rev *Revision) string {
	if kind, err := r.store.ResolveAlias(rev.RevisionableType); err == nil {
		if name, ok := kind.FieldNames[rev.Key]; ok && name != "" {
			return name
		}
	}
	if strings.Index(rev.Key, idSuffix) > 0 {
		return strings.ReplaceAll(rev.Key, idSuffix, "")
	}
	return rev.Key
}

// SubjectOf loads the record the revision belongs to.
func (r *Resolver) SubjectOf(ctx context.Context, rev *Revision) (any, bool) {
	kind, err := r.store.ResolveAlias(rev.RevisionableType)
	if err != nil {
		return nil, false
	}
	instance, err := r.store.LoadByID(ctx, kind, fmt.Sprint(rev.RevisionableID), false)
	if err != nil {
		if !errors.Is(err, ErrInstanceNotFound) {
			r.logger.WithError(err).WithField("revision_id", rev.ID).Info("revisionable: subject lookup failed")
		}
		return nil, false
	}
	return instance, true
}

func deref(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
