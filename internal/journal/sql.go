package journal

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      started_at,
                      device,
                      store_file)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	insertCaptureSQL = `
INSERT INTO captures (session_id,
                      key,
                      captured_at,
                      frame_len,
                      frames_used,
                      frames_discarded,
                      quality,
                      total_micros)
VALUES (?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)`

	selectCapturesSQL = `
SELECT
    id,
    session_id,
    key,
    captured_at,
    frame_len,
    frames_used,
    frames_discarded,
    quality,
    total_micros
FROM captures
WHERE
    session_id = ?
ORDER BY captured_at, id`
)

//go:embed schema.sql
var schemaSQL string
