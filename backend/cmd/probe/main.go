package main

import (
	"context"
	"fmt"

	_ "github.com/stretchr/testify/assert"
	_ "github.com/stretchr/testify/require"
	_ "testing"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/render"
	"friendgraph/backend/internal/store"
)

func main() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		run()
	}()
	<-done
}

func run() {
	ctx := context.Background()
	svc := graph.NewService(store.NewMemory())
	scope := graph.Scope{GuildID: "g", ChannelID: "c"}
	for _, p := range [][2]graph.UserID{{"u1", "u2"}, {"u2", "u3"}} {
		if _, err := svc.Connect(ctx, scope, p[0], p[1]); err != nil {
			panic(err)
		}
	}
	snap, err := svc.Snapshot(ctx, scope)
	if err != nil {
		panic(err)
	}
	data, err := render.StaticPNG(ctx, snap, render.IDLabels)
	if err != nil {
		panic(err)
	}
	fmt.Println("ok", len(data))
}
