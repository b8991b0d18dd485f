// Package http exposes the scenario compiler over HTTP using gin.
//
// Routes:
//   - POST /compile: blueprint in, OpenSCENARIO document out
//   - GET /scenarios/:id: a document saved with POST /compile?save=true
//   - POST /context: map, rules and prompt context for a free-text request
//   - GET /maps, GET /maps/:key: registered map contexts
//   - GET /health
package http
