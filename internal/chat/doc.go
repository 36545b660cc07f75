// Package chat implements the conversation domain: the message turn
// pipeline, the conversation log and the per-project chat endpoints'
// business logic.
//
// A turn moves through fixed stages:
//
//	validate -> quota check -> retrieve -> assemble -> generate -> persist -> account
//
// The stages after the quota check run detached from the request
// context. Quota is only consumed for turns that produced an answer,
// and both messages of a turn are persisted atomically so a failed
// turn leaves the conversation log untouched.
package chat
