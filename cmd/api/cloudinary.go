package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// extractPublicIDFromURL recovers the cloudinary public ID from a stored
// secure URL so the asset can be destroyed later.
func extractPublicIDFromURL(fileURL string) (string, error) {
	parsedURL, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			return strings.Join(pathParts[i+1:], "/"), nil
		}
	}

	return "", errors.New("failed to extract public ID from URL")
}
