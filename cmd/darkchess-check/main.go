package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/park285/dark-chess/internal/apiclient"
	"github.com/park285/dark-chess/internal/msgcat"
	"github.com/park285/dark-chess/pkg/darkdto"
)

func main() {
	baseURL := os.Getenv("DARKCHESS_BASE_URL")
	wsURL := os.Getenv("DARKCHESS_WS_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	cat, err := msgcat.New(os.Getenv("MESSAGES_LANG"), "")
	if err != nil {
		log.Fatalf("messages: %v", err)
	}
	client := apiclient.New(baseURL, apiclient.WithTimeout(8*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}

	created, err := client.Create(ctx)
	if err != nil {
		log.Fatalf("create error: %v", err)
	}
	log.Print(cat.Text("check.created", map[string]any{"Secret": prefix(created.WhiteSecret, 8)}, "created"))

	join, err := client.JoinSecret(ctx, created.WhiteSecret)
	if err != nil {
		log.Fatalf("join_secret error: %v", err)
	}
	joined, err := client.Join(ctx, join)
	if err != nil {
		log.Fatalf("join error: %v", err)
	}
	log.Print(cat.Text("check.joined", nil, "joined"))

	if wsURL != "" {
		go func() {
			err := apiclient.Watch(ctx, wsURL, *joined.BlackSecret, func(v darkdto.PlayerViewAndStats) {
				log.Printf("WS view: us=%s turn=%s moves=%d", v.Us, v.WhosTurn, v.MoveCount)
			})
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				log.Printf("WS error: %v", err)
			}
		}()
	} else {
		log.Println("DARKCHESS_WS_URL not set; skipping WS check")
	}

	// e2e4
	ok, err := client.ValidateMove(ctx, created.WhiteSecret, 3, 1, 3, 3)
	if err != nil || !ok {
		log.Fatalf("move-validity: valid=%v err=%v", ok, err)
	}
	view, err := client.Move(ctx, created.WhiteSecret, 3, 1, 3, 3)
	if err != nil {
		log.Fatalf("move error: %v", err)
	}
	log.Print(cat.Text("check.moved", map[string]any{"Us": view.Us, "Move": "e2e4", "Turn": view.WhosTurn}, "moved"))

	for _, secret := range []string{created.WhiteSecret, *joined.BlackSecret} {
		st, err := client.State(ctx, secret)
		if err != nil {
			log.Fatalf("state error: %v", err)
		}
		log.Print(cat.Text("check.view", map[string]any{"Us": st.Us, "Visible": visible(st.PlayerView), "Turn": st.WhosTurn}, "view"))
	}

	png, err := client.BoardPNG(ctx, *joined.BlackSecret)
	if err != nil {
		log.Printf("board.png error: %v", err)
	} else {
		log.Printf("board.png ok: %d bytes", len(png))
	}

	// Observe pushes for a short window
	if wsURL != "" {
		t := time.NewTimer(2 * time.Second)
		<-t.C
	}
}

func visible(v darkdto.BoardView) int {
	n := 0
	for x := range v {
		for y := range v[x] {
			if !v[x][y].Hidden {
				n++
			}
		}
	}
	return n
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
