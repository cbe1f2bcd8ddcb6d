package handler

import "github.com/gin-gonic/gin"

// WebResponse is the uniform envelope every endpoint returns.
type WebResponse struct {
	StatusCode int     `json:"statusCode"`
	Data       any     `json:"data,omitempty"`
	Message    string  `json:"message,omitempty"`
	Errors     string  `json:"errors,omitempty"`
	Paging     *Paging `json:"paging,omitempty"`
}

type Paging struct {
	Size        int `json:"size"`
	TotalPage   int `json:"total_page"`
	CurrentPage int `json:"current_page"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, WebResponse{StatusCode: status, Data: data})
}

func respondPaged(c *gin.Context, status int, data any, paging Paging) {
	c.JSON(status, WebResponse{StatusCode: status, Data: data, Paging: &paging})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, WebResponse{StatusCode: status, Errors: msg})
}
