package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"grandmaster/internal/game"
	"grandmaster/internal/httputil"
)

func decodePayload(evt Event, dst any) error {
	if err := json.Unmarshal(evt.Payload, dst); err != nil {
		return errors.New("invalid payload")
	}
	if errs := httputil.ValidationErrors(httputil.Validate.Struct(dst)); len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ClickSquare applies a square click. The new state reaches every client on
// the table through the broadcaster.
func ClickSquare(_ context.Context, evt Event, c *Client) error {
	var payload PayloadClick
	if err := decodePayload(evt, &payload); err != nil {
		return err
	}
	_, _, err := c.table.Click(payload.Square)
	return err
}

func NewGame(_ context.Context, evt Event, c *Client) error {
	var payload PayloadNewGame
	if err := decodePayload(evt, &payload); err != nil {
		return err
	}
	mode, err := game.ParseMode(payload.Mode)
	if err != nil {
		return err
	}
	color, err := game.ParseColor(payload.Color)
	if err != nil {
		return err
	}
	_, err = c.manager.hub.Restart(c.table.ID(), mode, color)
	return err
}

func RetryAI(_ context.Context, _ Event, c *Client) error {
	_, err := c.table.RetryAI()
	return err
}
