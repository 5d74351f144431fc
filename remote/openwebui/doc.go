// Package openwebui implements remote.KnowledgeClient against the Open WebUI
// REST API.
//
// Endpoints used:
//
//	GET  /api/v1/knowledge/{id}            collection lookup
//	POST /api/v1/knowledge/create          collection creation
//	POST /api/v1/files/                    multipart file upload
//	POST /api/v1/knowledge/{id}/file/add   attach an uploaded file
//
// Every request carries "Authorization: Bearer <token>" and
// "Accept: application/json". Upload bodies are streamed from disk.
package openwebui
