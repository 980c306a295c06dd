package revisionable

import "errors"

var (
	ErrUnknownEntityType           = errors.New("unknown entity type")
	ErrRelationNotFound            = errors.New("relation not found")
	ErrMalformedPolymorphicPayload = errors.New("malformed polymorphic payload")
	ErrInstanceNotFound            = errors.New("instance not found")
)
