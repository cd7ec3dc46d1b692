package upload

import (
	"RecipeCards-Backend/domain"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

type (
	// AIClient talks to the external inference service. One configured
	// client is shared across requests; both methods re-attach the
	// uploaded file as multipart content.
	AIClient interface {
		GenerateMenus(ctx context.Context, req domain.UploadRecipeRequest) (domain.AIMenusResponse, error)
		GenerateMenusStream(ctx context.Context, req domain.UploadRecipeRequest) (io.ReadCloser, error)
		GenerateMenusStreamParallel(ctx context.Context, req domain.UploadRecipeRequest) (io.ReadCloser, error)
	}

	aiClient struct {
		baseURL    string
		httpClient *http.Client
	}
)

func NewAIClient(baseURL string, httpClient *http.Client) AIClient {
	return &aiClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *aiClient) GenerateMenus(ctx context.Context, req domain.UploadRecipeRequest) (domain.AIMenusResponse, error) {
	resp, err := c.postFile(ctx, c.baseURL+"/generate/menus", req)
	if err != nil {
		return domain.AIMenusResponse{}, err
	}
	defer resp.Body.Close()

	var result domain.AIMenusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.AIMenusResponse{}, err
	}
	return result, nil
}

// GenerateMenusStream returns the raw event-stream body. The caller owns
// closing it.
func (c *aiClient) GenerateMenusStream(ctx context.Context, req domain.UploadRecipeRequest) (io.ReadCloser, error) {
	resp, err := c.postFile(ctx, c.baseURL+"/generate/menus/stream", req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GenerateMenusStreamParallel hits the variant where the inference
// service processes pages concurrently. The event protocol is identical;
// only page arrival order may differ.
func (c *aiClient) GenerateMenusStreamParallel(ctx context.Context, req domain.UploadRecipeRequest) (io.ReadCloser, error) {
	resp, err := c.postFile(ctx, c.baseURL+"/generate/menus/stream-parallel", req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *aiClient) postFile(ctx context.Context, url string, req domain.UploadRecipeRequest) (*http.Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	header.Set("Content-Type", req.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &domain.AIServerError{StatusCode: resp.StatusCode}
	}

	return resp, nil
}
