package project

import (
	"FastGrapher/pkg/response"
	"net/http"
)

var (
	ErrProjectNotFound = response.NewCodedError(http.StatusNotFound, "PROJECT_NOT_FOUND", "project not found")
	ErrProjectNotOwned = response.NewCodedError(http.StatusForbidden, "PROJECT_NOT_OWNED", "you do not have access to this project")
	ErrInvalidType     = response.NewCodedError(http.StatusBadRequest, "INVALID_PROJECT_TYPE", "invalid project type")
	ErrNothingToUpdate = response.NewCodedError(http.StatusBadRequest, "NOTHING_TO_UPDATE", "no fields to update")
)
