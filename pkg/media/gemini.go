package media

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const geminiProviderName = "Gemini"

// GeminiMediaService stores media through the Gemini File API. Uploaded files
// are served from a provider URI that expires per provider policy.
type GeminiMediaService struct {
	client *genai.Client
}

func NewGeminiMediaService(apiKey string) (*GeminiMediaService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}
	return &GeminiMediaService{client: client}, nil
}

// Upload transfers the file to the provider under a unique name and returns
// its descriptor. The transfer is complete when Upload returns.
func (s *GeminiMediaService) Upload(ctx context.Context, content io.Reader, fileName string) (*FileInfo, error) {
	if content == nil {
		return nil, fmt.Errorf("content cannot be nil")
	}
	if fileName == "" {
		return nil, fmt.Errorf("file name cannot be empty")
	}

	providerFileName := strings.ReplaceAll(uuid.NewString(), "-", "")
	contentType := mime.TypeByExtension(filepath.Ext(fileName))

	log.Printf("GeminiMediaService -> Upload -> starting upload of %s as %s", fileName, providerFileName)

	file, err := s.client.UploadFile(ctx, providerFileName, content, &genai.UploadFileOptions{
		DisplayName: fileName,
		MIMEType:    contentType,
	})
	if err != nil {
		log.Printf("GeminiMediaService -> Upload -> error uploading %s: %v", fileName, err)
		return nil, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	log.Printf("GeminiMediaService -> Upload -> uploaded %s", fileName)

	return &FileInfo{
		FileName:         fileName,
		ProviderFileName: file.Name,
		ProviderName:     geminiProviderName,
		ContentType:      file.MIMEType,
		ContentHash:      hex.EncodeToString(file.Sha256Hash),
		URI:              file.URI,
		PublicURI:        file.URI,
	}, nil
}

// PublicURL returns the current serving URL for an uploaded file.
func (s *GeminiMediaService) PublicURL(ctx context.Context, providerFileName string) (string, error) {
	if providerFileName == "" {
		return "", fmt.Errorf("provider file name cannot be empty")
	}
	file, err := s.client.GetFile(ctx, providerFileName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", providerFileName, err)
	}
	return file.URI, nil
}
