package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"lectoria/backend/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PhotoPayload is one uploaded image: either inline base64 or an already
// stored url.
type PhotoPayload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Base64   string `json:"base64,omitempty"`
	URL      string `json:"url,omitempty"`
	FileSize int64  `json:"fileSize"`
}

// PhotoSaver persists a payload's bytes and returns the storage url.
type PhotoSaver func(p PhotoPayload) (string, error)

// PublishResult is the outcome of a publish-with-photos. Degraded is set
// when the module and/or group committed but a later attribution step
// failed; nothing is rolled back in that case.
type PublishResult struct {
	Module     *models.Module             `json:"module"`
	PhotoGroup *models.PhotoGroup         `json:"photoGroup,omitempty"`
	Photos     []models.Photo             `json:"photos,omitempty"`
	Degraded   *PartialAttributionFailure `json:"-"`
}

// AttributionService coordinates photo-group creation, module publish,
// linking and the contribution ledger.
type AttributionService struct {
	DB     *gorm.DB
	Merge  *MergeService
	Logger *log.Logger
}

func NewAttributionService(db *gorm.DB, merge *MergeService, logger *log.Logger) *AttributionService {
	return &AttributionService{DB: db, Merge: merge, Logger: logger}
}

// PublishWithPhotos creates the photo group and publishes the module
// concurrently (they touch disjoint rows), then links the group into the
// module and writes the ledger. Linking strictly waits for both inputs.
// A module publish failure is fatal; failures after the module committed
// degrade the result instead of failing it.
func (s *AttributionService) PublishWithPhotos(ctx context.Context, draft *models.ModuleDraft, decision *Decision, photos []PhotoPayload, userID uint, save PhotoSaver) (*PublishResult, error) {
	result := &PublishResult{}

	var group *models.PhotoGroup
	var groupErr error

	g, gctx := errgroup.WithContext(ctx)
	if len(photos) > 0 {
		g.Go(func() error {
			group, groupErr = s.createGroup(gctx, draft, userID)
			// Group failure must not cancel the module publish.
			return nil
		})
	}
	g.Go(func() error {
		module, err := s.Merge.Publish(draft, decision, userID)
		if err != nil {
			return err
		}
		result.Module = module
		return nil
	})
	if err := g.Wait(); err != nil {
		if group != nil {
			// Accepted partial-failure state: the group stays, unlinked.
			s.Logger.Printf("module publish failed after photo group %s committed: %v", group.ID, err)
		}
		return nil, err
	}

	contributionKind := models.ContributionModule
	event := "module_created"
	if decision.AppendTo != nil {
		contributionKind = models.ContributionEdit
		event = "module_appended"
	}
	if err := s.recordContribution(ctx, userID, contributionKind, result.Module.Slug, map[string]interface{}{
		"event": event,
		"title": result.Module.Title,
	}); err != nil {
		return s.degrade(result, "module-contribution", group, err), nil
	}

	if groupErr != nil {
		return s.degrade(result, "photo-group", nil, groupErr), nil
	}
	if group == nil {
		return result, nil
	}
	result.PhotoGroup = group

	if err := s.LinkPhotoGroup(ctx, result.Module.Slug, group.ID); err != nil {
		return s.degrade(result, "link", group, err), nil
	}

	if err := s.recordContribution(ctx, userID, models.ContributionPhoto, group.ID.String(), map[string]interface{}{
		"event": "photo_group_created",
	}); err != nil {
		return s.degrade(result, "group-contribution", group, err), nil
	}

	for _, payload := range photos {
		photo, err := s.addPhoto(ctx, group, payload, userID, save)
		if err != nil {
			return s.degrade(result, "photos", group, err), nil
		}
		result.Photos = append(result.Photos, *photo)
	}

	return result, nil
}

// LinkPhotoGroup adds the group id to the module's weak reference array.
// Keyed on (module slug, photo group id) and safe to re-invoke: an already
// linked pair is a no-op.
func (s *AttributionService) LinkPhotoGroup(ctx context.Context, moduleSlug string, groupID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module models.Module
		if err := tx.Where("slug = ?", moduleSlug).First(&module).Error; err != nil {
			return err
		}
		for _, id := range module.PhotoGroupIDs {
			if id == groupID {
				return nil
			}
		}
		module.PhotoGroupIDs = append(module.PhotoGroupIDs, groupID)
		return tx.Model(&models.Module{}).Where("id = ?", module.ID).
			Update("photo_group_ids", module.PhotoGroupIDs).Error
	})
}

func (s *AttributionService) createGroup(ctx context.Context, draft *models.ModuleDraft, userID uint) (*models.PhotoGroup, error) {
	group := &models.PhotoGroup{
		Title:       draft.Title,
		Description: draft.Description,
		CreatedBy:   userID,
	}
	if d := draftDiscipline(draft); d != "" {
		group.DisciplineID = &d
	}
	if err := s.DB.WithContext(ctx).Create(group).Error; err != nil {
		return nil, fmt.Errorf("create photo group: %w", err)
	}
	return group, nil
}

func (s *AttributionService) addPhoto(ctx context.Context, group *models.PhotoGroup, payload PhotoPayload, userID uint, save PhotoSaver) (*models.Photo, error) {
	url, err := save(payload)
	if err != nil {
		return nil, fmt.Errorf("store photo %q: %w", payload.Filename, err)
	}

	photo := &models.Photo{
		PhotoGroupID: group.ID,
		UploadedBy:   userID,
		Filename:     payload.Filename,
		FileSize:     payload.FileSize,
		MimeType:     payload.MimeType,
		URL:          url,
	}
	if err := s.DB.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}

	if err := s.recordContribution(ctx, userID, models.ContributionPhoto, photo.ID.String(), map[string]interface{}{
		"event":    "photo_uploaded",
		"filename": payload.Filename,
	}); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *AttributionService) recordContribution(ctx context.Context, userID uint, kind, targetID string, meta map[string]interface{}) error {
	metadata, _ := json.Marshal(meta)
	return s.DB.WithContext(ctx).Create(&models.UserContribution{
		UserID:   userID,
		Kind:     kind,
		TargetID: targetID,
		Metadata: datatypes.JSON(metadata),
	}).Error
}

func (s *AttributionService) degrade(result *PublishResult, step string, group *models.PhotoGroup, err error) *PublishResult {
	failure := &PartialAttributionFailure{
		Step:       step,
		ModuleSlug: result.Module.Slug,
		Err:        err,
	}
	if group != nil {
		failure.PhotoGroupID = group.ID
	}
	s.Logger.Printf("%v", failure)
	result.Degraded = failure
	return result
}

func draftDiscipline(draft *models.ModuleDraft) string {
	if draft.Discipline != "" {
		return draft.Discipline
	}
	if draft.DisciplineSelection != nil {
		return draft.DisciplineSelection.SelectedDisciplineID
	}
	return ""
}
