package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/pkg/types"
)

// DefaultRegion is used for calls that are not tied to a region
const DefaultRegion = "us-east-1"

// EC2API is the subset of the EC2 client used by the tool
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	RebootInstances(ctx context.Context, params *ec2.RebootInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RebootInstancesOutput, error)
}

// Client wraps AWS SDK clients, one EC2 client per region, all sharing the
// active credential context.
type Client struct {
	cfg           aws.Config
	creds         types.Credentials
	defaultRegion string
	clients       map[string]EC2API
	loadConfig    func(ctx context.Context, creds types.Credentials, region string) (aws.Config, error)
	newEC2        func(cfg aws.Config, region string) EC2API
	logger        *zap.Logger
}

// ClientOption allows customizing the AWS Client
type ClientOption func(*Client)

// WithCredentials sets the initial credential context
func WithCredentials(creds types.Credentials) ClientOption {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithDefaultRegion sets the region used for region-less calls
func WithDefaultRegion(region string) ClientOption {
	return func(c *Client) {
		if region != "" {
			c.defaultRegion = region
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new AWS Client with the given options
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{
		defaultRegion: DefaultRegion,
		clients:       make(map[string]EC2API),
		loadConfig:    LoadConfig,
		newEC2:        newEC2Client,
		logger:        zap.NewNop(),
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	if err := c.SetCredentials(ctx, c.creds); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadConfig builds an SDK config for the credential context. Direct keys
// become a static provider, a profile selects the shared config profile and
// the zero value keeps the SDK default chain.
func LoadConfig(ctx context.Context, creds types.Credentials, region string) (aws.Config, error) {
	var configOpts []func(*config.LoadOptions) error

	switch {
	case creds.HasKeys():
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		))
	case creds.Profile != "":
		configOpts = append(configOpts, config.WithSharedConfigProfile(creds.Profile))
	}

	if region != "" {
		configOpts = append(configOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return cfg, nil
}

// SetCredentials replaces the credential context. Regional clients built
// with the previous credentials are dropped.
func (c *Client) SetCredentials(ctx context.Context, creds types.Credentials) error {
	cfg, err := c.loadConfig(ctx, creds, c.defaultRegion)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.creds = creds
	c.clients = make(map[string]EC2API)

	c.logger.Debug("credentials applied", zap.Stringer("credentials", creds))
	return nil
}

// Credentials returns the active credential context
func (c *Client) Credentials() types.Credentials {
	return c.creds
}

// Config returns the SDK config of the active credential context
func (c *Client) Config() aws.Config {
	return c.cfg
}

// ec2 returns the cached EC2 client for region
func (c *Client) ec2(region string) EC2API {
	if region == "" {
		region = c.defaultRegion
	}
	if api, ok := c.clients[region]; ok {
		return api
	}

	api := c.newEC2(c.cfg, region)
	c.clients[region] = api
	return api
}

func newEC2Client(cfg aws.Config, region string) EC2API {
	return ec2.NewFromConfig(cfg, func(o *ec2.Options) {
		o.Region = region
	})
}
