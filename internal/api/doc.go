// Package api contains the HTTP handlers, request/response models and
// error mapping for the public REST surface. Handlers stay thin:
// decode, validate, delegate to a service, map the error, respond.
package api
