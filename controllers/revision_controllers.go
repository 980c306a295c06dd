package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/revision-history/revisionable"
	"github.com/yeremiapane/revision-history/utils"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type RevisionController struct {
	DB       *gorm.DB
	Resolver *revisionable.Resolver
}

func NewRevisionController(db *gorm.DB, resolver *revisionable.Resolver) *RevisionController {
	return &RevisionController{DB: db, Resolver: resolver}
}

type ActorView struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

// RevisionView is a revision with its values resolved for display.
type RevisionView struct {
	ID        uint       `json:"id"`
	Type      string     `json:"type"`
	EntityID  uint       `json:"entity_id"`
	Key       string     `json:"key"`
	Field     string     `json:"field"`
	OldValue  *string    `json:"old_value"`
	NewValue  *string    `json:"new_value"`
	User      *ActorView `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
}

func (rc *RevisionController) view(ctx context.Context, rev *revisionable.Revision) RevisionView {
	v := RevisionView{
		ID:        rev.ID,
		Type:      rev.RevisionableType,
		EntityID:  rev.RevisionableID,
		Key:       rev.Key,
		Field:     rc.Resolver.FieldName(rev),
		CreatedAt: rev.CreatedAt,
	}
	if old, ok := rc.Resolver.OldValue(ctx, rev); ok {
		v.OldValue = &old
	}
	if newValue, ok := rc.Resolver.NewValue(ctx, rev); ok {
		v.NewValue = &newValue
	}
	if actor, ok := rc.Resolver.ActorResponsible(ctx, rev); ok {
		v.User = &ActorView{ID: *rev.UserID}
		if named, ok := actor.(revisionable.Nameable); ok {
			v.User.Name = named.IdentifiableName()
		}
	}
	return v
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetRevisions lists resolved revisions, newest first, optionally filtered by
// ?type= (aliases of the type included) and ?id=.
func (rc *RevisionController) GetRevisions(c *gin.Context) {
	query := rc.DB.WithContext(c.Request.Context()).Model(&revisionable.Revision{})

	if typ := c.Query("type"); typ != "" {
		query = query.Where("revisionable_type IN ?", rc.Resolver.StoredTypeNames(typ))
	}
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("id must be a positive integer"))
			return
		}
		query = query.Where("revisionable_id = ?", id)
	}

	limit, offset := pageParams(c)
	var revisions []revisionable.Revision
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&revisions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]RevisionView, 0, len(revisions))
	for i := range revisions {
		views = append(views, rc.view(c.Request.Context(), &revisions[i]))
	}
	utils.RespondJSON(c, http.StatusOK, "Revision history", views)
}

func (rc *RevisionController) findRevision(c *gin.Context) (*revisionable.Revision, bool) {
	id, err := strconv.ParseUint(c.Param("revision_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid revision id"))
		return nil, false
	}

	var rev revisionable.Revision
	if err := rc.DB.WithContext(c.Request.Context()).First(&rev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("revision not found"))
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return &rev, true
}

func (rc *RevisionController) GetRevisionByID(c *gin.Context) {
	rev, ok := rc.findRevision(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revision detail", rc.view(c.Request.Context(), rev))
}

// GetRevisionSubject returns the record the revision was made on.
func (rc *RevisionController) GetRevisionSubject(c *gin.Context) {
	rev, ok := rc.findRevision(c)
	if !ok {
		return
	}
	subject, ok := rc.Resolver.SubjectOf(c.Request.Context(), rev)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("subject not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revision subject", subject)
}
