// Package httpapi exposes the chat loop over HTTP with gin.
//
// Routes:
//
//	GET  /                     health check
//	POST /chat/                answer a message synchronously
//	POST /chats                start a chat from a first message
//	GET  /chats                list chats, newest first
//	GET  /chats/:id/messages   list a chat's messages in order
//	POST /messages             append a user message for the polling loop
package httpapi
