// Package api handles incoming HTTP requests, request validation and
// response formatting for the image-recognition mock. It translates HTTP
// concerns into calls on the task, catalog and submission services and maps
// their errors back to status codes.
package api
