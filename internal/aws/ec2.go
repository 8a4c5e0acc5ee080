package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/internal/regions"
	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

// ListInstances returns every instance of a region in provider order
func (c *Client) ListInstances(ctx context.Context, region string) ([]types.Instance, error) {
	paginator := ec2.NewDescribeInstancesPaginator(c.ec2(region), &ec2.DescribeInstancesInput{})

	var instances []types.Instance
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances in %s: %w", region, err)
		}

		for _, reservation := range output.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toInstance(region, inst))
			}
		}
	}

	c.logger.Debug("listed instances", zap.String("region", region), zap.Int("count", len(instances)))
	return instances, nil
}

// Start starts an EC2 instance
func (c *Client) Start(ctx context.Context, inst *types.Instance) error {
	_, err := c.ec2(inst.Region).StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{inst.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", inst.ID, err)
	}
	return nil
}

// Stop stops an EC2 instance
func (c *Client) Stop(ctx context.Context, inst *types.Instance) error {
	_, err := c.ec2(inst.Region).StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{inst.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to stop %s: %w", inst.ID, err)
	}
	return nil
}

// Reboot reboots an EC2 instance
func (c *Client) Reboot(ctx context.Context, inst *types.Instance) error {
	_, err := c.ec2(inst.Region).RebootInstances(ctx, &ec2.RebootInstancesInput{
		InstanceIds: []string{inst.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to reboot %s: %w", inst.ID, err)
	}
	return nil
}

// Status returns the composite status of an instance: the lifecycle state,
// suffixed with ": <health>" once a status check applies.
func (c *Client) Status(ctx context.Context, inst *types.Instance) (string, error) {
	output, err := c.ec2(inst.Region).DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds:         []string{inst.ID},
		IncludeAllInstances: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe status of %s: %w", inst.ID, err)
	}

	if len(output.InstanceStatuses) == 0 {
		return "", fmt.Errorf("%w: %s", provider.ErrNoStatus, inst.ID)
	}

	return compositeStatus(output.InstanceStatuses[0]), nil
}

// ListRegions returns the regions enabled for the account, geography first
func (c *Client) ListRegions(ctx context.Context) ([]string, error) {
	output, err := c.ec2(c.defaultRegion).DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}

	names := make([]string, 0, len(output.Regions))
	for _, r := range output.Regions {
		if name := deref(r.RegionName); name != "" {
			names = append(names, name)
		}
	}

	return regions.Sort(names), nil
}

// compositeStatus formats an instance status as "<state>" or
// "<state>: <health>"
func compositeStatus(s ec2types.InstanceStatus) string {
	var state string
	if s.InstanceState != nil {
		state = string(s.InstanceState.Name)
	}

	if s.InstanceStatus == nil {
		return state
	}

	health := s.InstanceStatus.Status
	if health == "" || health == ec2types.SummaryStatusNotApplicable {
		return state
	}

	return state + ": " + string(health)
}

// toInstance converts an EC2 Instance to our Instance type
func toInstance(region string, i ec2types.Instance) types.Instance {
	inst := types.Instance{
		ID:        deref(i.InstanceId),
		Region:    region,
		Type:      string(i.InstanceType),
		PrivateIP: deref(i.PrivateIpAddress),
		PublicIP:  deref(i.PublicIpAddress),
	}

	if i.State != nil {
		inst.State = string(i.State.Name)
	}

	for _, tag := range i.Tags {
		if deref(tag.Key) == "Name" {
			inst.Name = deref(tag.Value)
		}
	}

	return inst
}

// deref safely dereferences a string pointer
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
