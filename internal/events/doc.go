// Package events decouples state-changing services from the components that
// react to them. Services emit typed events through the Emitter interface
// without knowing which handlers listen; the sync coordinator and the
// invitation delivery task register as handlers at startup.
package events
