package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"lectoria/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MergeService persists validated drafts: create-new as an upsert keyed on
// slug, append-to as a transactional read-modify-write of the target module.
type MergeService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMergeService(db *gorm.DB, logger *log.Logger) *MergeService {
	return &MergeService{DB: db, Logger: logger}
}

// Publish runs the persistence path the validated decision selected and
// returns the stored module.
func (s *MergeService) Publish(draft *models.ModuleDraft, decision *Decision, userID uint) (*models.Module, error) {
	switch {
	case decision.CreateNew != nil:
		return s.createNew(draft, decision.CreateNew.Slug, userID)
	case decision.AppendTo != nil:
		return s.appendTo(draft, decision.AppendTo.TargetSlug, userID)
	default:
		return nil, &ConsistencyFault{Op: "publish", Err: errors.New("decision carries no branch")}
	}
}

// SaveDraft persists a draft without publishing it. Drafts are invisible to
// consolidation decisions and to the discipline counter. A slug held by a
// published module is rejected: saving a draft must never un-publish or
// overwrite published content.
func (s *MergeService) SaveDraft(draft *models.ModuleDraft, userID uint) (*models.Module, error) {
	slug := draft.Slug
	if slug == "" {
		slug = DeriveSlug(draft.Title)
	}
	if slug == "" {
		return nil, &ValidationError{Reason: ReasonMissingSlug, Message: "draft has no slug and no title to derive one from"}
	}

	module := moduleFromDraft(draft, slug, userID)
	module.Draft = true

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var published int64
		if err := tx.Model(&models.Module{}).
			Where("slug = ? AND draft = ?", slug, false).Count(&published).Error; err != nil {
			return err
		}
		if published > 0 {
			return &ValidationError{
				Reason:  ReasonSlugConflict,
				Message: fmt.Sprintf("slug %q belongs to a published module", slug),
			}
		}
		if err := upsertBySlug(tx, module); err != nil {
			return err
		}
		// Reload: on a conflict-update the returned id is not the stored row's.
		return tx.Where("slug = ?", slug).First(module).Error
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (s *MergeService) createNew(draft *models.ModuleDraft, slug string, userID uint) (*models.Module, error) {
	module := moduleFromDraft(draft, slug, userID)
	module.Draft = false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := upsertBySlug(tx, module); err != nil {
			return err
		}
		// Reload: on a conflict-update the returned id is not the stored row's.
		if err := tx.Where("slug = ?", slug).First(module).Error; err != nil {
			return err
		}
		return syncConceptLinks(tx, module)
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// appendTo merges the draft into the target under a row lock. Title and slug
// come from the existing module; lessons and exercises are concatenated
// existing-then-new; the string sets are unioned first-occurrence-wins with
// case-sensitive exact matching; estimated time is summed. A draft whose
// digest equals the last applied one is rejected instead of being appended
// twice.
func (s *MergeService) appendTo(draft *models.ModuleDraft, targetSlug string, userID uint) (*models.Module, error) {
	digest := draftDigest(draft, targetSlug)

	var merged *models.Module
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("slug = ? AND draft = ?", targetSlug, false)
		if tx.Dialector.Name() == "postgres" {
			// sqlite locks the whole file; the row lock only matters here.
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var target models.Module
		if err := q.First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Validation saw this target; it vanishing now means a race
				// with a concurrent delete.
				return &ConsistencyFault{
					Op:  "append-merge",
					Err: fmt.Errorf("target module %q disappeared after validation", targetSlug),
				}
			}
			return err
		}

		if target.LastAppendDigest == digest {
			return &ValidationError{
				Reason:  ReasonDuplicateAppend,
				Message: fmt.Sprintf("draft already appended to %q", targetSlug),
			}
		}

		target.Lessons = append(target.Lessons, draft.Lessons...)
		target.Exercises = append(target.Exercises, draft.Exercises...)
		target.Concepts = unionStrings(target.Concepts, draft.Concepts)
		target.Tags = unionStrings(target.Tags, draft.Tags)
		target.Prerequisites = unionStrings(target.Prerequisites, draft.Prerequisites)
		target.LearningOutcomes = unionStrings(target.LearningOutcomes, draft.LearningOutcomes)
		target.EstimatedTime += draft.EstimatedTime
		target.Draft = false
		target.LastUpdatedBy = userID
		target.LastAppendDigest = digest
		// Reset so re-publishing the merged module never self-appends.
		target.Consolidation = models.Consolidation{Action: models.ActionCreateNew}

		if err := tx.Save(&target).Error; err != nil {
			return err
		}
		if err := syncConceptLinks(tx, &target); err != nil {
			return err
		}
		merged = &target
		return nil
	})
	if err != nil {
		var fault *ConsistencyFault
		if errors.As(err, &fault) {
			s.Logger.Printf("SEVERE: %v", err)
		}
		return nil, err
	}
	return merged, nil
}

// Delete removes a module permanently. Hard deletion happens only through
// explicit admin action; the caller must reconcile the discipline counter
// afterwards.
func (s *MergeService) Delete(slug string) (*models.Module, error) {
	var module models.Module
	if err := s.DB.Where("slug = ?", slug).First(&module).Error; err != nil {
		return nil, err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", module.ID).Delete(&models.ModuleConcept{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&module).Error
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func moduleFromDraft(draft *models.ModuleDraft, slug string, userID uint) *models.Module {
	module := &models.Module{
		Slug:             slug,
		Title:            draft.Title,
		Description:      draft.Description,
		Version:          draft.Version,
		EstimatedTime:    draft.EstimatedTime,
		Lessons:          draft.Lessons,
		Exercises:        draft.Exercises,
		Concepts:         unionStrings(nil, draft.Concepts),
		Tags:             unionStrings(nil, draft.Tags),
		Prerequisites:    unionStrings(nil, draft.Prerequisites),
		LearningOutcomes: unionStrings(nil, draft.LearningOutcomes),
		CreatedBy:        userID,
		LastUpdatedBy:    userID,
		Consolidation:    models.Consolidation{Action: models.ActionCreateNew},
	}
	if d := draftDiscipline(draft); d != "" {
		module.DisciplineID = &d
	}
	return module
}

// upsertBySlug makes create-new idempotent under retry: the same slug
// retried overwrites with the same data instead of failing on the unique
// index.
func upsertBySlug(tx *gorm.DB, module *models.Module) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "discipline_id", "draft", "version",
			"estimated_time", "lessons", "exercises", "concepts", "tags",
			"prerequisites", "learning_outcomes", "last_updated_by",
			"last_append_digest", "consolidation_action",
			"consolidation_target_module_slug", "consolidation_reason",
			"updated_at",
		}),
	}).Create(module).Error
}

// syncConceptLinks registers the module's concept names under its discipline
// and links them. Concepts are registered per discipline so a linked
// concept's discipline always matches the module's; modules without a
// discipline carry their concept names inline only.
func syncConceptLinks(tx *gorm.DB, module *models.Module) error {
	if module.DisciplineID == nil {
		return nil
	}
	for _, name := range module.Concepts {
		var concept models.Concept
		err := tx.Where("name = ? AND discipline_id = ?", name, *module.DisciplineID).
			FirstOrCreate(&concept, models.Concept{Name: name, DisciplineID: *module.DisciplineID}).Error
		if err != nil {
			return err
		}
		link := models.ModuleConcept{ModuleID: module.ID, ConceptID: concept.ID}
		if err := tx.Where(&link).FirstOrCreate(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// draftDigest fingerprints everything an append would merge, metadata
// included, so that only an exact re-submission of the same draft matches.
// The same draft against the same target yields the same digest, which
// duplicate-append rejection keys on.
func draftDigest(draft *models.ModuleDraft, targetSlug string) string {
	payload, _ := json.Marshal(struct {
		Target           string            `json:"target"`
		Lessons          []models.Lesson   `json:"lessons"`
		Exercises        []models.Exercise `json:"exercises"`
		Concepts         []string          `json:"concepts"`
		Tags             []string          `json:"tags"`
		Prerequisites    []string          `json:"prerequisites"`
		LearningOutcomes []string          `json:"learningOutcomes"`
		EstimatedTime    int               `json:"estimatedTime"`
	}{
		targetSlug, draft.Lessons, draft.Exercises, draft.Concepts,
		draft.Tags, draft.Prerequisites, draft.LearningOutcomes,
		draft.EstimatedTime,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// unionStrings appends incoming entries not already present, preserving
// order of first occurrence. Matching is case-sensitive exact comparison.
func unionStrings(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, v := range existing {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range incoming {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
