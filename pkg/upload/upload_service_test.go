package upload

import (
	"RecipeCards-Backend/domain"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeAIClient struct {
	stream    string
	streamErr error
	menus     domain.AIMenusResponse
	menusErr  error

	sequentialCalls int
	parallelCalls   int
}

func (f *fakeAIClient) GenerateMenus(_ context.Context, _ domain.UploadRecipeRequest) (domain.AIMenusResponse, error) {
	return f.menus, f.menusErr
}

func (f *fakeAIClient) GenerateMenusStream(_ context.Context, _ domain.UploadRecipeRequest) (io.ReadCloser, error) {
	f.sequentialCalls++
	return f.openStream()
}

func (f *fakeAIClient) GenerateMenusStreamParallel(_ context.Context, _ domain.UploadRecipeRequest) (io.ReadCloser, error) {
	f.parallelCalls++
	return f.openStream()
}

func (f *fakeAIClient) openStream() (io.ReadCloser, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return io.NopCloser(strings.NewReader(f.stream)), nil
}

type fakeS3 struct {
	keys  []string
	links []string
	err   error
}

func (f *fakeS3) UploadRaw(_ context.Context, objectKey string, _ []byte, _ string) error {
	f.keys = append(f.keys, objectKey)
	return f.err
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	f.links = append(f.links, objectKey)
	return "https://bucket.s3.test/" + objectKey
}

func uploadReq() domain.UploadRecipeRequest {
	return domain.UploadRecipeRequest{
		FileName:    "korean-menu.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
		UserID:      42,
	}
}

// decodeFrames splits an emitted response body back into event maps.
func decodeFrames(t *testing.T, body string) []map[string]any {
	t.Helper()

	var frames []map[string]any
	for _, frame := range strings.Split(body, "\n\n") {
		if frame == "" {
			continue
		}
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame without prefix: %q", frame)
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &decoded); err != nil {
			t.Fatalf("undecodable frame %q: %v", frame, err)
		}
		frames = append(frames, decoded)
	}
	return frames
}

func countTerminal(frames []map[string]any) int {
	n := 0
	for _, f := range frames {
		if f["type"] == "complete" || f["type"] == "error" {
			n++
		}
	}
	return n
}

func TestStreamRecipeScenario(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	s3 := &fakeS3{}
	service := NewUploadService(repo, &fakeAIClient{stream: sampleStream}, s3)

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	if len(frames) != 7 {
		t.Fatalf("frames = %d, want 7 (recipe_created + 6 relayed)", len(frames))
	}

	if frames[0]["type"] != "recipe_created" {
		t.Fatalf("frames[0].type = %v, want recipe_created", frames[0]["type"])
	}
	recipeID := frames[0]["recipeId"].(float64)
	if recipeID != 1 {
		t.Errorf("recipeId = %v, want 1", recipeID)
	}

	last := frames[len(frames)-1]
	if last["type"] != "complete" {
		t.Fatalf("last frame type = %v, want complete", last["type"])
	}
	if last["totalMenus"].(float64) != 2 {
		t.Errorf("totalMenus = %v, want 2", last["totalMenus"])
	}
	if last["recipeId"].(float64) != recipeID {
		t.Errorf("complete recipeId = %v, want %v", last["recipeId"], recipeID)
	}
	if got := countTerminal(frames); got != 1 {
		t.Errorf("terminal frames = %d, want exactly 1", got)
	}

	// Every progress frame carries the recipe id so the client never
	// has to track the correlation itself.
	for _, f := range frames {
		if f["type"] == "progress" && f["recipeId"].(float64) != recipeID {
			t.Errorf("progress frame missing recipeId: %v", f)
		}
	}

	// Stored state: 2 menus in page order, 3 then 2 ingredients.
	if len(repo.recipes) != 1 {
		t.Fatalf("recipes = %d, want 1", len(repo.recipes))
	}
	if repo.recipes[0].Title != "korean-menu" {
		t.Errorf("recipe title = %q, want extension stripped", repo.recipes[0].Title)
	}
	menus := repo.menusForRecipe(uint(recipeID))
	if len(menus) != 2 {
		t.Fatalf("menus = %d, want 2", len(menus))
	}
	if menus[0].Name != "Tofu Stew" || menus[1].Name != "Rice" {
		t.Errorf("menu order = %q, %q", menus[0].Name, menus[1].Name)
	}
	if got := len(repo.ingredientsForMenu(menus[0].ID)); got != 3 {
		t.Errorf("menu 1 ingredients = %d, want 3", got)
	}
	if got := len(repo.ingredientsForMenu(menus[1].ID)); got != 2 {
		t.Errorf("menu 2 ingredients = %d, want 2", got)
	}

	if len(s3.keys) != 1 || !strings.HasSuffix(s3.keys[0], "-korean-menu.pdf") {
		t.Errorf("audit keys = %v", s3.keys)
	}
	if len(s3.links) != 1 || s3.links[0] != s3.keys[0] {
		t.Errorf("audit copy link resolved for %v, want %v", s3.links, s3.keys)
	}
}

// The parallel variant shares the whole relay; only the upstream
// endpoint differs.
func TestStreamRecipeParallelUsesParallelEndpoint(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	ai := &fakeAIClient{stream: sampleStream}
	service := NewUploadService(repo, ai, &fakeS3{})

	var buf bytes.Buffer
	service.StreamRecipeParallel(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	if ai.parallelCalls != 1 || ai.sequentialCalls != 0 {
		t.Fatalf("parallel calls = %d, sequential calls = %d", ai.parallelCalls, ai.sequentialCalls)
	}

	frames := decodeFrames(t, buf.String())
	if len(frames) != 7 {
		t.Fatalf("frames = %d, want 7", len(frames))
	}
	if frames[len(frames)-1]["type"] != "complete" {
		t.Errorf("last frame = %v, want complete", frames[len(frames)-1])
	}
	if len(repo.menus) != 2 {
		t.Errorf("stored menus = %d, want 2", len(repo.menus))
	}
}

func TestStreamRecipeCreatedBeforeFirstProgress(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	service := NewUploadService(repo, &fakeAIClient{stream: sampleStream}, &fakeS3{})

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	created, progress := -1, -1
	for i, f := range frames {
		if f["type"] == "recipe_created" && created == -1 {
			created = i
		}
		if f["type"] == "progress" && progress == -1 {
			progress = i
		}
	}
	if created == -1 || progress == -1 || created >= progress {
		t.Errorf("recipe_created at %d, first progress at %d", created, progress)
	}
}

func TestStreamRecipeUpstreamErrorFrame(t *testing.T) {
	t.Parallel()

	stream := "data: {\"type\":\"ocr_start\"}\ndata: {\"type\":\"error\",\"message\":\"model overloaded\"}\n"
	repo := newFakeRecipeRepository()
	service := NewUploadService(repo, &fakeAIClient{stream: stream}, &fakeS3{})

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	last := frames[len(frames)-1]
	if last["type"] != "error" || last["message"] != "model overloaded" {
		t.Errorf("last frame = %v, want upstream error relayed", last)
	}
	if got := countTerminal(frames); got != 1 {
		t.Errorf("terminal frames = %d, want exactly 1", got)
	}
}

// An upstream disconnect without a terminal frame must not leave the
// client hanging: the relay synthesizes an error frame.
func TestStreamRecipeAbruptUpstreamEOF(t *testing.T) {
	t.Parallel()

	stream := "data: {\"type\":\"ocr_start\"}\ndata: {\"type\":\"progress\",\"page\":1,\"progress\":50,\"menus\":[{\"name\":\"Soup\",\"ingredients\":\"water\"}]}\n"
	repo := newFakeRecipeRepository()
	service := NewUploadService(repo, &fakeAIClient{stream: stream}, &fakeS3{})

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	last := frames[len(frames)-1]
	if last["type"] != "error" {
		t.Fatalf("last frame = %v, want synthesized error", last)
	}
	if last["message"] != domain.ErrStreamIncomplete.Error() {
		t.Errorf("message = %v", last["message"])
	}
	if got := countTerminal(frames); got != 1 {
		t.Errorf("terminal frames = %d, want exactly 1", got)
	}

	// The page that arrived before the disconnect stays committed.
	if len(repo.menus) != 1 {
		t.Errorf("menus = %d, want 1", len(repo.menus))
	}
}

func TestStreamRecipeAIServerUnavailable(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	service := NewUploadService(repo, &fakeAIClient{streamErr: &domain.AIServerError{StatusCode: 503}}, &fakeS3{})

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want single error frame", len(frames))
	}
	if frames[0]["type"] != "error" || frames[0]["message"] != "AI server error: 503" {
		t.Errorf("frame = %v", frames[0])
	}
	if len(repo.recipes) != 0 {
		t.Errorf("recipes = %d, want none before stream is available", len(repo.recipes))
	}
}

// A storage failure on one batch is batch-scoped: the client still sees
// the progress frame and the stream still terminates with complete.
func TestStreamRecipePersistenceFailureNonFatal(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	repo.createMenuErr["Tofu Stew"] = errors.New("insert failed")
	service := NewUploadService(repo, &fakeAIClient{stream: sampleStream}, &fakeS3{})

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	progressFrames := 0
	for _, f := range frames {
		if f["type"] == "progress" {
			progressFrames++
		}
	}
	if progressFrames != 2 {
		t.Errorf("progress frames = %d, want 2 despite batch failure", progressFrames)
	}
	if frames[len(frames)-1]["type"] != "complete" {
		t.Errorf("last frame = %v, want complete", frames[len(frames)-1])
	}

	// Only the second batch reached storage.
	if len(repo.menus) != 1 || repo.menus[0].Name != "Rice" {
		t.Errorf("stored menus = %+v, want only Rice", repo.menus)
	}
}

// Once the client disconnects, the relay must stop consuming the AI
// stream and writing to storage on its behalf.
func TestStreamRecipeClientDisconnectAbandonsPersistence(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	service := NewUploadService(repo, &fakeAIClient{stream: sampleStream}, &fakeS3{})

	// Writes through llm_start succeed; the first progress frame hits
	// a broken pipe. Its batch was already persisted, the second batch
	// must not be.
	emitter := NewEmitter(bufio.NewWriter(&errWriter{allowed: 4}))
	service.StreamRecipe(context.Background(), uploadReq(), emitter)

	if len(repo.menus) != 1 {
		t.Fatalf("stored menus = %d, want 1 (first batch only)", len(repo.menus))
	}
	if repo.menus[0].Name != "Tofu Stew" {
		t.Errorf("stored menu = %q", repo.menus[0].Name)
	}
}

func TestStreamRecipeAuditFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	s3 := &fakeS3{err: errors.New("s3 down")}
	service := NewUploadService(repo, &fakeAIClient{stream: sampleStream}, s3)

	var buf bytes.Buffer
	service.StreamRecipe(context.Background(), uploadReq(), NewEmitter(bufio.NewWriter(&buf)))

	frames := decodeFrames(t, buf.String())
	if frames[len(frames)-1]["type"] != "complete" {
		t.Errorf("last frame = %v, want complete despite audit failure", frames[len(frames)-1])
	}
	if len(s3.links) != 0 {
		t.Errorf("links = %v, failed put must not be advertised", s3.links)
	}
}

func TestProcessRecipeTransactionalFlow(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	ai := &fakeAIClient{menus: domain.AIMenusResponse{Menus: []domain.StreamMenu{
		{Name: "Tofu Stew", Ingredients: "tofu, gochujang, water"},
		{Name: "Rice", Ingredients: "rice, water"},
	}}}
	service := NewUploadService(repo, ai, &fakeS3{})

	res, err := service.ProcessRecipe(context.Background(), uploadReq())
	if err != nil {
		t.Fatalf("ProcessRecipe: %v", err)
	}

	if res.Title != "korean-menu" {
		t.Errorf("title = %q", res.Title)
	}
	if len(res.Menus) != 2 {
		t.Fatalf("menus = %d, want 2", len(res.Menus))
	}
	if len(res.Menus[0].Ingredients) != 3 || len(res.Menus[1].Ingredients) != 2 {
		t.Errorf("ingredient counts = %d, %d", len(res.Menus[0].Ingredients), len(res.Menus[1].Ingredients))
	}
}

func TestProcessRecipeRejectsInvalidAIResult(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	service := NewUploadService(repo, &fakeAIClient{menus: domain.AIMenusResponse{}}, &fakeS3{})

	if _, err := service.ProcessRecipe(context.Background(), uploadReq()); !errors.Is(err, domain.ErrInvalidAIMenus) {
		t.Fatalf("err = %v, want ErrInvalidAIMenus", err)
	}
	if len(repo.recipes) != 0 {
		t.Errorf("recipes = %d, want none", len(repo.recipes))
	}
}

// A menu without ingredients is as invalid as one without a name.
func TestProcessRecipeRejectsMenuWithoutIngredients(t *testing.T) {
	t.Parallel()

	repo := newFakeRecipeRepository()
	ai := &fakeAIClient{menus: domain.AIMenusResponse{Menus: []domain.StreamMenu{
		{Name: "Rice", Ingredients: "rice, water"},
		{Name: "Mystery", Ingredients: ""},
	}}}
	service := NewUploadService(repo, ai, &fakeS3{})

	if _, err := service.ProcessRecipe(context.Background(), uploadReq()); !errors.Is(err, domain.ErrInvalidAIMenus) {
		t.Fatalf("err = %v, want ErrInvalidAIMenus", err)
	}
	if len(repo.recipes) != 0 {
		t.Errorf("recipes = %d, want none", len(repo.recipes))
	}
}

func TestRecipeTitleFallback(t *testing.T) {
	t.Parallel()

	if got := recipeTitle("menu.v2.pdf"); got != "menu.v2" {
		t.Errorf("recipeTitle = %q, want only last extension stripped", got)
	}
	if got := recipeTitle(".hidden"); got != ".hidden" {
		t.Errorf("recipeTitle = %q, leading dot is not an extension", got)
	}
	if got := recipeTitle(""); got == "" {
		t.Error("recipeTitle for empty filename must generate a placeholder")
	}
}
