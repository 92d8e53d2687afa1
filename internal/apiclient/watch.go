package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/dark-chess/pkg/darkdto"
)

// Watch connects to the websocket push endpoint and calls fn for every view
// received. It returns nil when the server closes normally (the game ended).
func Watch(ctx context.Context, wsBaseURL, secret string, fn func(darkdto.PlayerViewAndStats)) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	target := strings.TrimRight(wsBaseURL, "/") + "/ws/" + url.PathEscape(secret)
	conn, _, err := websocket.Dial(dialCtx, target, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	defer conn.CloseNow()

	for {
		var view darkdto.PlayerViewAndStats
		if err := wsjson.Read(ctx, conn, &view); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ws read: %w", err)
		}
		if fn != nil {
			fn(view)
		}
	}
}
