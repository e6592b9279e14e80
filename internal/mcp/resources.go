package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/trainwise/internal/models"
)

type muscleGroupEntry struct {
	Group     models.MuscleGroup     `json:"group"`
	Exercises []string               `json:"exercises"`
	Defaults  models.VolumeLandmarks `json:"default_landmarks"`
}

func (h *handlers) muscleGroups(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries := make([]muscleGroupEntry, 0, len(models.MuscleGroups))
	for _, g := range models.MuscleGroups {
		entries = append(entries, muscleGroupEntry{
			Group:     g,
			Exercises: models.ExercisesFor(g),
			Defaults:  models.DefaultLandmarks(g),
		})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
