package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNoAPIKey is returned when place lookups are requested without a maps key
var ErrNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY not set")

// PlaceResolver turns a place id into a printable address
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, placeID string) (string, error)
}

// MapsPlaceResolver resolves Google place ids through the Places API
type MapsPlaceResolver struct {
	client *maps.Client
}

// NewMapsPlaceResolver creates a resolver; extra options are passed to the maps client
func NewMapsPlaceResolver(apiKey string, opts ...maps.ClientOption) (*MapsPlaceResolver, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &MapsPlaceResolver{client: client}, nil
}

// ResolvePlace returns "Name, formatted address", or just the address when the name is part of it
func (r *MapsPlaceResolver) ResolvePlace(ctx context.Context, placeID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	details, err := r.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: "de",
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskPlaceID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("place details: %w", err)
	}
	return formatPlace(details.Name, details.FormattedAddress), nil
}

func formatPlace(name, address string) string {
	switch {
	case address == "":
		return name
	case name == "" || strings.HasPrefix(address, name):
		return address
	default:
		return name + ", " + address
	}
}
