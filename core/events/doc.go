// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: a production plan was computed, balanced or not
//   - RequestEvent: an API request was served
package events
