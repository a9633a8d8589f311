package repository

import "fmt"

const keyPrefix = "tictactoe"

// matchesKey - list of finished matches of a room, newest first.
func matchesKey(roomID string) string {
	return fmt.Sprintf("%s:matches:%s", keyPrefix, roomID)
}
