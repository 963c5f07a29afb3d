// Package server exposes the logo session interpreter over the network.
//
// The TCP server accepts connections and runs one independent
// session.Session per connection, each in its own goroutine. A WebSocket
// server offers the same protocol to browsers: every text message is one
// command line and every reply is one text message.
//
// # Wire protocol
//
//   - On connect the server sends "hello\r\n".
//   - coord replies "(row,col)\r\n".
//   - render replies with the framed canvas followed by a blank line.
//   - steps, right, left, hover, draw and eraser reply nothing.
//   - quit or a blank line closes the session.
//
// # Connection limits
//
// Each server keeps a sliding-window count of accepted connections per
// client IP. Connections over the limit are closed immediately, before any
// greeting is sent.
package server
