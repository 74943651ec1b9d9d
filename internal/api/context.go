package api

import (
	"context"
	"errors"
)

type contextKey string

const teamContextKey contextKey = "team_id"

func withTeamID(ctx context.Context, teamID string) context.Context {
	return context.WithValue(ctx, teamContextKey, teamID)
}

func teamIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(teamContextKey).(string)
	if !ok || id == "" {
		return "", errors.New("missing team auth context")
	}
	return id, nil
}
