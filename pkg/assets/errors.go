package assets

import "fmt"

// AssetLoadError reports a texture or model that could not be fetched or decoded
type AssetLoadError struct {
	URL   string
	Cause error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("failed to load asset %s: %v", e.URL, e.Cause)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Cause
}

// InvalidAssetError reports a model that decoded fine but does not have the
// shape the viewer needs: exactly one top-level node carrying a mesh.
type InvalidAssetError struct {
	URL    string
	Reason string
}

func (e *InvalidAssetError) Error() string {
	return fmt.Sprintf("invalid asset %s: %s", e.URL, e.Reason)
}
