package mongoex

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"

	"github.com/gwatts/rootcerts"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circleci/mongoprofiler/config/secret"
	"github.com/circleci/mongoprofiler/o11y"
)

type Config struct {
	URI secret.String
	// URIOptions are merged into the query string of URI, replacing any option of the same name.
	URIOptions map[string]string
	UseTLS     bool

	// Options are applied after the URI, so anything set here wins.
	Options     *options.ClientOptions
	PoolMonitor *event.PoolMonitor
}

// New connects to mongo. The context passed in is expected to carry an o11y provider
// and is only used for reporting (not for cancellation),
func New(ctx context.Context, appName string, cfg Config) (client *mongo.Client, err error) {
	_, span := o11y.StartSpan(ctx, "cfg: connect to database")
	defer o11y.End(span, &err)

	uri, mongoURL, err := applyURIOptions(cfg.URI.Raw(), cfg.URIOptions)
	if err != nil {
		return nil, err
	}

	span.AddField("host", mongoURL.Host)
	span.AddField("username", mongoURL.User.Username())
	span.AddField("app_name", appName)

	opts := options.Client().
		ApplyURI(uri).
		SetAppName(appName)

	if cfg.Options != nil {
		opts = options.MergeClientOptions(opts, cfg.Options)
	}

	if cfg.PoolMonitor != nil {
		opts.SetPoolMonitor(cfg.PoolMonitor)
	}

	if cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    rootcerts.ServerCertPool(),
		})
	}

	return mongo.Connect(ctx, opts)
}

func applyURIOptions(uri string, uriOptions map[string]string) (string, *url.URL, error) {
	mongoURL, err := url.Parse(uri)

	// url.Parse will print the URI if it can't parse. The URI contains the password, so this gets the underlying error
	// without printing the secret string.
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return "", nil, fmt.Errorf("mongoex: failed to parse URI: %w", urlError.Err)
	} else if err != nil {
		return "", nil, err
	}

	if len(uriOptions) == 0 {
		return uri, mongoURL, nil
	}

	q := mongoURL.Query()
	for k, v := range uriOptions {
		q.Set(k, v)
	}
	mongoURL.RawQuery = q.Encode()
	// the driver insists on a slash between the hosts and the options
	if mongoURL.Path == "" {
		mongoURL.Path = "/"
	}
	return mongoURL.String(), mongoURL, nil
}
