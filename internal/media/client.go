package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"pitchreel/internal/chat"
	"pitchreel/internal/generation"
)

// Client drives media generation jobs on Vertex AI. Video jobs map onto
// real long-running operations; image generation is synchronous at the
// vendor, so an image job is wrapped as a handle that is already terminal
// on its first poll.
type Client struct {
	client       *genai.Client
	videoModel   string
	imageModel   string
	outputGCSURI string
}

type Options struct {
	Project  string
	Location string

	VideoModel string
	ImageModel string

	// OutputGCSURI, when set, asks the service to write video output under
	// this gs:// prefix instead of returning inline bytes.
	OutputGCSURI string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  opts.Project,
		Location: opts.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create media client: %w", err)
	}

	return &Client{
		client:       client,
		videoModel:   opts.VideoModel,
		imageModel:   opts.ImageModel,
		outputGCSURI: opts.OutputGCSURI,
	}, nil
}

type jobHandle struct {
	id string

	// op is live for video jobs and refreshed on every poll.
	op *genai.GenerateVideosOperation

	// outcome is pre-computed for image jobs.
	outcome *generation.PollResult
}

func (h *jobHandle) ID() string { return h.id }

func (c *Client) Submit(ctx context.Context, cfg generation.JobConfig) (generation.JobHandle, error) {
	switch cfg.Kind {
	case generation.MediaVideo:
		return c.submitVideo(ctx, cfg)
	case generation.MediaImage:
		return c.submitImage(ctx, cfg)
	default:
		return nil, &generation.Error{
			Class:   generation.ClassSubmissionFailed,
			Message: fmt.Sprintf("unsupported media kind %q", cfg.Kind),
		}
	}
}

func (c *Client) submitVideo(ctx context.Context, cfg generation.JobConfig) (generation.JobHandle, error) {
	var image *genai.Image
	if ref := cfg.Reference; ref != nil && ref.Kind == chat.AttachmentImage {
		payload, err := ref.Bytes()
		if err != nil {
			return nil, &generation.Error{
				Class:   generation.ClassSubmissionFailed,
				Message: fmt.Sprintf("reference attachment: %v", err),
			}
		}
		image = &genai.Image{ImageBytes: payload, MIMEType: ref.MIMEType}
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio:  cfg.AspectRatio,
		Resolution:   cfg.Resolution,
		OutputGCSURI: c.outputGCSURI,
	}

	op, err := c.client.Models.GenerateVideos(ctx, c.videoModel, cfg.Prompt, image, config)
	if err != nil {
		return nil, classifyVendorError(err)
	}

	return &jobHandle{id: op.Name, op: op}, nil
}

func (c *Client) submitImage(ctx context.Context, cfg generation.JobConfig) (generation.JobHandle, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    cfg.AspectRatio,
	}

	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, cfg.Prompt, config)
	if err != nil {
		return nil, classifyVendorError(err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, &generation.Error{
			Class:   generation.ClassSubmissionFailed,
			Message: "no image in response",
		}
	}

	img := resp.GeneratedImages[0].Image
	return &jobHandle{
		id: fmt.Sprintf("imagen-%d", time.Now().UnixNano()),
		outcome: &generation.PollResult{
			Done:      true,
			ResultURI: img.GCSURI,
			Payload:   img.ImageBytes,
			MIMEType:  img.MIMEType,
		},
	}, nil
}

func (c *Client) Poll(ctx context.Context, handle generation.JobHandle) (generation.PollResult, error) {
	h, ok := handle.(*jobHandle)
	if !ok {
		return generation.PollResult{
			Done:  true,
			Error: &generation.Error{Class: generation.ClassPollingFailed, Message: "foreign job handle"},
		}, nil
	}

	if h.outcome != nil {
		return *h.outcome, nil
	}

	op, err := c.client.Operations.GetVideosOperation(ctx, h.op, nil)
	if err != nil {
		// Transport-level failure: the orchestrator retries at the next
		// interval.
		return generation.PollResult{}, fmt.Errorf("poll %s: %w", h.id, err)
	}
	h.op = op

	if !op.Done {
		return generation.PollResult{}, nil
	}
	if len(op.Error) > 0 {
		return generation.PollResult{
			Done: true,
			Error: &generation.Error{
				Class:   generation.ClassPollingFailed,
				Message: operationErrorMessage(op.Error),
			},
		}, nil
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return generation.PollResult{
			Done:  true,
			Error: &generation.Error{Class: generation.ClassPollingFailed, Message: "operation finished without output"},
		}, nil
	}

	video := op.Response.GeneratedVideos[0].Video
	return generation.PollResult{
		Done:      true,
		ResultURI: video.URI,
		Payload:   video.VideoBytes,
		MIMEType:  video.MIMEType,
	}, nil
}

func operationErrorMessage(opErr map[string]any) string {
	if msg, ok := opErr["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("%v", opErr)
}

// classifyVendorError separates "you lack access" from everything else so
// the orchestrator can route the user back through the auth gate.
func classifyVendorError(err error) *generation.Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 401 || apiErr.Code == 403 {
			return &generation.Error{Class: generation.ClassAuthRequired, Message: apiErr.Message}
		}
		return &generation.Error{Class: generation.ClassSubmissionFailed, Message: apiErr.Message}
	}

	msg := err.Error()
	if strings.Contains(msg, "PERMISSION_DENIED") || strings.Contains(msg, "UNAUTHENTICATED") {
		return &generation.Error{Class: generation.ClassAuthRequired, Message: msg}
	}
	return &generation.Error{Class: generation.ClassSubmissionFailed, Message: msg}
}
