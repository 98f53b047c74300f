// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/nitchau/handyman-sub001/apperr"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// ResolveAPIKey retrieves the Maps key named displayName through Application
// Default Credentials. projectID overrides the project found in the
// credentials.
func ResolveAPIKey(ctx context.Context, displayName, projectID string) (string, error) {
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", fmt.Errorf("finding default credentials: %v: %w", err, apperr.ErrConfigurationMissing)
		}

		projectID = creds.ProjectID
	}

	if projectID == "" {
		return "", fmt.Errorf("no project id in credentials and none configured: %w", apperr.ErrConfigurationMissing)
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts KeyString; the secret needs its own call.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q found but its key string is empty", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name %q not found in project %s: %w", displayName, projectID, apperr.ErrConfigurationMissing)
}
