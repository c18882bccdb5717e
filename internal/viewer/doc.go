// Package viewer serves processed bundles over HTTP.
//
// Routes:
//   - GET /health
//   - GET /api/dates
//   - GET /api/stocks/{date}
//   - GET /api/data/{date}/{stock}
//   - GET /api/replay/{date}/{stock} (websocket)
//
// Replay streams a bundle's trade tape oldest first, one JSON message per
// trade, paced by a token bucket, and ends with a normal-closure frame.
package viewer
