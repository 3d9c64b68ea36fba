package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/shareme/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-l string   public client base endpoint for download-page links
//	-k string   metadata driver (postgres, memory)
//	-d string   PostgreSQL DSN
//	-o string   blob provider (s3, gcs, memory)
//	-n string   blob namespace (object key prefix)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   mail transport (smtp, resend, log)
//
// args is filtered with flagx.FilterArgs first, so flags owned by other
// parsers (such as -c) do not cause errors here.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-l", "-k", "-d", "-o", "-n", "-u", "-p", "-b", "-g", "-e", "-m"})

	fs := flag.NewFlagSet("shareme", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.ClientBaseEndpoint, "l", config.ClientBaseEndpoint, "public client base endpoint")
	fs.StringVar(&config.MetadataDriver, "k", config.MetadataDriver, "metadata driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BlobProvider, "o", config.BlobProvider, "blob provider")
	fs.StringVar(&config.BlobNamespace, "n", config.BlobNamespace, "blob namespace")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.MailTransport, "m", config.MailTransport, "mail transport")

	return fs.Parse(args)
}
