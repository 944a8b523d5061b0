package common

import "github.com/gin-gonic/gin"

// OK writes the success envelope the chat widget expects: {"success": true}
// merged with the handler's payload fields.
func OK(c *gin.Context, data gin.H) {
	out := gin.H{"success": true}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(200, out)
}

func Fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"error":   msg,
	})
}
