package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Make a GET request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFromFlags(cmd)
		if code := executeCall("GET", args[0], nil, settings); code != 0 {
			os.Exit(code)
		}
	},
}

// parseURL splits a URL into base URL and path
func parseURL(fullURL string) (string, string) {
	// Add scheme if missing
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	// Include user info in the base URL if present
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.Path
	if path == "" {
		path = "/"
	}

	if parsedURL.RawQuery != "" {
		path = path + "?" + parsedURL.RawQuery
	}

	if parsedURL.Fragment != "" {
		path = path + "#" + parsedURL.Fragment
	}

	return baseURL, path
}

func init() {
	addCallFlags(getCmd)
}
