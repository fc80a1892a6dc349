// Package dto contains the JSON shapes exchanged over HTTP and the
// mapper between the card display model and its wire record.
//
// Naming convention:
//   - Request types: <Action><Resource>Request (e.g., CreateEventRequest)
//   - Response types: <Resource>Response (e.g., CreatedEventResponse)
//   - Wire records shared with the browser keep the names the page uses
//     (CardPostDTO, EventData).
package dto
