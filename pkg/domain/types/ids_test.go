package types_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNewSessionID(t *testing.T) {
	ctx := context.Background()
	id := types.NewSessionID(ctx)
	gt.True(t, id.IsValid())
	gt.True(t, regexp.MustCompile(`^[a-f0-9]{8}$`).MatchString(id.Short()))
	gt.True(t, types.NewSessionID(ctx) != id)
}

func TestIDValidity(t *testing.T) {
	gt.False(t, types.AgentID("").IsValid())
	gt.False(t, types.AgentID("not-a-uuid").IsValid())
	gt.True(t, types.NewAgentID(context.Background()).IsValid())
	gt.True(t, types.NewVersionID(context.Background()).IsValid())
	gt.Equal(t, types.SessionID("abc").Short(), "abc")
}
