package imaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure Synthesizer implements ImageSynthesizer
var _ interfaces.ImageSynthesizer = (*Synthesizer)(nil)

// Synthesizer composes the illustration pipeline: elaborate an image prompt
// from the story idea, run the image model, store the result.
type Synthesizer struct {
	textGen interfaces.TextGenerator
	model   interfaces.ImageModelClient
	blobs   interfaces.BlobStore
	folder  string
	logger  *zap.Logger
}

// NewSynthesizer creates an illustration synthesizer. folder namespaces the
// stored files in the blob store.
func NewSynthesizer(
	textGen interfaces.TextGenerator,
	model interfaces.ImageModelClient,
	blobs interfaces.BlobStore,
	folder string,
	logger *zap.Logger,
) *Synthesizer {
	return &Synthesizer{
		textGen: textGen,
		model:   model,
		blobs:   blobs,
		folder:  folder,
		logger:  logger.Named("ImageSynthesizer"),
	}
}

// IllustrateFromText generates an illustration from the story idea alone.
func (s *Synthesizer) IllustrateFromText(ctx context.Context, storyIdea, mood string) (*models.Illustration, error) {
	s.logger.Info("Generating illustration from text")

	imagePrompt, err := s.textGen.GenerateImagePrompt(ctx, storyIdea, mood)
	if err != nil {
		return nil, fmt.Errorf("failed to build image prompt: %w", err)
	}

	imageData, err := s.model.Generate(ctx, imagePrompt, nil)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.blobs.Upload(ctx, imageData, s.folder)
	if err != nil {
		return nil, fmt.Errorf("failed to store illustration: %w", err)
	}

	s.logger.Info("Illustration generated", zap.String("imageURL", imageURL))
	return &models.Illustration{ImageURL: imageURL}, nil
}

// IllustrateFromSketch seeds the image model with the child's sketch. The
// sketch itself is stored too so it can be shown next to the result.
func (s *Synthesizer) IllustrateFromSketch(ctx context.Context, storyIdea, mood string, sketch []byte) (*models.Illustration, error) {
	if len(sketch) == 0 {
		return s.IllustrateFromText(ctx, storyIdea, mood)
	}
	s.logger.Info("Generating illustration from sketch", zap.Int("sketchBytes", len(sketch)))

	sketchURL, err := s.blobs.Upload(ctx, sketch, s.folder)
	if err != nil {
		return nil, fmt.Errorf("failed to store sketch: %w", err)
	}

	imagePrompt, err := s.textGen.GenerateImagePrompt(ctx, storyIdea, mood)
	if err != nil {
		return nil, fmt.Errorf("failed to build image prompt: %w", err)
	}

	imageData, err := s.model.Generate(ctx, imagePrompt, sketch)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.blobs.Upload(ctx, imageData, s.folder)
	if err != nil {
		return nil, fmt.Errorf("failed to store illustration: %w", err)
	}

	s.logger.Info("Illustration generated",
		zap.String("sketchURL", sketchURL),
		zap.String("imageURL", imageURL),
	)
	return &models.Illustration{ImageURL: imageURL, SketchURL: sketchURL}, nil
}
