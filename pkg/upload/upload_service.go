package upload

import (
	"RecipeCards-Backend/domain"
	"RecipeCards-Backend/entities"
	"RecipeCards-Backend/internal/utils/storage"
	"RecipeCards-Backend/pkg/recipe"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	UploadService interface {
		ProcessRecipe(ctx context.Context, req domain.UploadRecipeRequest) (domain.RecipeResponse, error)
		StreamRecipe(ctx context.Context, req domain.UploadRecipeRequest, emitter *Emitter)
		StreamRecipeParallel(ctx context.Context, req domain.UploadRecipeRequest, emitter *Emitter)
	}

	uploadService struct {
		recipeRepository recipe.RecipeRepository
		aiClient         AIClient
		s3               storage.AwsS3
		writer           *BatchWriter
	}
)

func NewUploadService(recipeRepository recipe.RecipeRepository, aiClient AIClient, s3 storage.AwsS3) UploadService {
	return &uploadService{
		recipeRepository: recipeRepository,
		aiClient:         aiClient,
		s3:               s3,
		writer:           NewBatchWriter(recipeRepository),
	}
}

// ProcessRecipe is the synchronous upload flow: one AI call, one
// transaction covering the recipe with all its menus and ingredients.
func (s *uploadService) ProcessRecipe(ctx context.Context, req domain.UploadRecipeRequest) (domain.RecipeResponse, error) {
	s.auditUpload(ctx, req)

	aiResult, err := s.aiClient.GenerateMenus(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if aiResult.Menus == nil {
		return domain.RecipeResponse{}, domain.ErrInvalidAIMenus
	}
	for _, m := range aiResult.Menus {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Ingredients) == "" {
			return domain.RecipeResponse{}, domain.ErrInvalidAIMenus
		}
	}

	var recipeID uint
	err = s.recipeRepository.Transaction(ctx, func(txRepo recipe.RecipeRepository) error {
		rec := &entities.Recipe{
			UserID: req.UserID,
			Title:  recipeTitle(req.FileName),
		}
		if err := txRepo.CreateRecipe(ctx, rec); err != nil {
			return err
		}
		if _, err := NewBatchWriter(txRepo).WriteBatch(ctx, rec.ID, aiResult.Menus); err != nil {
			return err
		}
		recipeID = rec.ID
		return nil
	})
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	created, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return recipe.ToRecipeResponse(created), nil
}

// StreamRecipe bridges the AI event stream to the client while writing
// each progress batch to storage. Events are relayed strictly in arrival
// order; persistence of batch N completes before batch N+1 starts.
// Exactly one terminal event reaches the client on every exit path.
func (s *uploadService) StreamRecipe(ctx context.Context, req domain.UploadRecipeRequest, emitter *Emitter) {
	s.relayStream(ctx, req, emitter, s.aiClient.GenerateMenusStream)
}

// StreamRecipeParallel is the same relay against the inference service's
// concurrent-page endpoint. Pages may arrive out of order upstream, but
// relay and persistence stay strictly sequential per batch.
func (s *uploadService) StreamRecipeParallel(ctx context.Context, req domain.UploadRecipeRequest, emitter *Emitter) {
	s.relayStream(ctx, req, emitter, s.aiClient.GenerateMenusStreamParallel)
}

func (s *uploadService) relayStream(ctx context.Context, req domain.UploadRecipeRequest, emitter *Emitter, open func(context.Context, domain.UploadRecipeRequest) (io.ReadCloser, error)) {
	defer func() {
		// The producer disconnected without a terminal frame.
		if !emitter.Terminated() {
			_ = emitter.EmitTerminal(domain.ErrorEvent{
				Type:    domain.EventError,
				Message: domain.ErrStreamIncomplete.Error(),
			})
		}
	}()

	s.auditUpload(ctx, req)

	stream, err := open(ctx, req)
	if err != nil {
		_ = emitter.EmitTerminal(domain.ErrorEvent{
			Type:    domain.EventError,
			Message: err.Error(),
		})
		return
	}
	defer stream.Close()

	// The recipe row exists before any event is relayed so the client
	// can correlate everything that follows.
	rec := &entities.Recipe{
		UserID: req.UserID,
		Title:  recipeTitle(req.FileName),
	}
	if err := s.recipeRepository.CreateRecipe(ctx, rec); err != nil {
		log.Printf("Failed to create recipe for upload %q: %v", req.FileName, err)
		_ = emitter.EmitTerminal(domain.ErrorEvent{
			Type:    domain.EventError,
			Message: "Failed to process file",
		})
		return
	}

	if err := emitter.Emit(domain.RecipeCreatedEvent{
		Type:     domain.EventRecipeCreated,
		RecipeID: rec.ID,
	}); err != nil {
		return
	}

	parser := NewFrameParser()
	totalMenus := 0
	buf := make([]byte, 32*1024)

	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			for _, event := range parser.Feed(buf[:n]) {
				if !s.relayEvent(ctx, rec.ID, event, emitter, &totalMenus) {
					return
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				log.Printf("Error reading AI stream: %v", readErr)
			}
			break
		}
	}

	if event, ok := parser.Flush(); ok {
		s.relayEvent(ctx, rec.ID, event, emitter, &totalMenus)
	}
}

// relayEvent handles one parsed event. Returns false when the relay must
// stop: a terminal event was written, or the client went away.
func (s *uploadService) relayEvent(ctx context.Context, recipeID uint, event domain.StreamEvent, emitter *Emitter, totalMenus *int) bool {
	switch event.Type {
	case domain.EventProgress:
		// A failed batch is logged and skipped; the client still sees
		// the progress frame so the live view keeps moving.
		if _, err := s.writer.WriteBatch(ctx, recipeID, event.Menus); err != nil {
			log.Printf("Failed to persist menu batch for page %d: %v", event.Page, err)
		}
		*totalMenus += len(event.Menus)
		err := emitter.Emit(domain.ProgressEvent{
			Type:     domain.EventProgress,
			Page:     event.Page,
			Progress: event.Progress,
			Menus:    event.Menus,
			RecipeID: recipeID,
		})
		return err == nil

	case domain.EventComplete:
		_ = emitter.EmitTerminal(domain.CompleteEvent{
			Type:       domain.EventComplete,
			RecipeID:   recipeID,
			TotalMenus: *totalMenus,
		})
		return false

	case domain.EventError:
		_ = emitter.EmitTerminal(domain.ErrorEvent{
			Type:    domain.EventError,
			Message: event.Message,
		})
		return false

	default:
		// init, ocr_start, ocr_complete, llm_start and anything the
		// producer adds later pass through untouched.
		return emitter.EmitRaw(event.Raw) == nil
	}
}

// auditUpload keeps a best-effort raw copy of the document in object
// storage. Failures never block the pipeline.
func (s *uploadService) auditUpload(ctx context.Context, req domain.UploadRecipeRequest) {
	objectKey := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), req.FileName)
	if err := s.s3.UploadRaw(ctx, objectKey, req.Data, req.ContentType); err != nil {
		log.Printf("Failed to store upload copy %q: %v", objectKey, err)
		return
	}
	log.Printf("Stored upload copy at %s", s.s3.GetPublicLinkKey(objectKey))
}

func recipeTitle(fileName string) string {
	if fileName == "" {
		return fmt.Sprintf("Recipe Collection %s", uuid.NewString()[:8])
	}
	if idx := strings.LastIndex(fileName, "."); idx > 0 {
		return fileName[:idx]
	}
	return fileName
}
