package aws

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

type fakeEC2 struct {
	region    string
	pages     []*ec2.DescribeInstancesOutput
	statuses  []ec2types.InstanceStatus
	regions   []string
	err       error
	started   []string
	stopped   []string
	rebooted  []string
	statusReq *ec2.DescribeInstanceStatusInput
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &ec2.DescribeInstancesOutput{}, nil
	}
	page := 0
	if params.NextToken != nil {
		fmt.Sscanf(*params.NextToken, "%d", &page)
	}
	return f.pages[page], nil
}

func (f *fakeEC2) DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error) {
	f.statusReq = params
	if f.err != nil {
		return nil, f.err
	}
	return &ec2.DescribeInstanceStatusOutput{InstanceStatuses: f.statuses}, nil
}

func (f *fakeEC2) DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	out := &ec2.DescribeRegionsOutput{}
	for _, r := range f.regions {
		out.Regions = append(out.Regions, ec2types.Region{RegionName: aws.String(r)})
	}
	return out, f.err
}

func (f *fakeEC2) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	f.started = append(f.started, params.InstanceIds...)
	return &ec2.StartInstancesOutput{}, f.err
}

func (f *fakeEC2) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	f.stopped = append(f.stopped, params.InstanceIds...)
	return &ec2.StopInstancesOutput{}, f.err
}

func (f *fakeEC2) RebootInstances(ctx context.Context, params *ec2.RebootInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RebootInstancesOutput, error) {
	f.rebooted = append(f.rebooted, params.InstanceIds...)
	return &ec2.RebootInstancesOutput{}, f.err
}

// newTestClient returns a Client whose regional clients are the given fakes
func newTestClient(t *testing.T, fakes map[string]*fakeEC2) (*Client, *[]types.Credentials) {
	t.Helper()
	var loads []types.Credentials

	c := &Client{
		defaultRegion: DefaultRegion,
		clients:       make(map[string]EC2API),
		loadConfig: func(ctx context.Context, creds types.Credentials, region string) (aws.Config, error) {
			loads = append(loads, creds)
			return aws.Config{Region: region}, nil
		},
		newEC2: func(cfg aws.Config, region string) EC2API {
			f, ok := fakes[region]
			if !ok {
				t.Fatalf("unexpected region %q", region)
			}
			f.region = region
			return f
		},
		logger: zap.NewNop(),
	}
	require.NoError(t, c.SetCredentials(context.Background(), types.Credentials{}))
	return c, &loads
}

func ec2Instance(id, name, state string) ec2types.Instance {
	inst := ec2types.Instance{
		InstanceId:   aws.String(id),
		InstanceType: ec2types.InstanceTypeT3Micro,
		State:        &ec2types.InstanceState{Name: ec2types.InstanceStateName(state)},
	}
	if name != "" {
		inst.Tags = []ec2types.Tag{
			{Key: aws.String("env"), Value: aws.String("prod")},
			{Key: aws.String("Name"), Value: aws.String(name)},
		}
	}
	return inst
}

func TestListInstances_FollowsPagesAndSetsRegion(t *testing.T) {
	fake := &fakeEC2{pages: []*ec2.DescribeInstancesOutput{
		{
			Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{ec2Instance("i-1", "web", "running")}}},
			NextToken:    aws.String("1"),
		},
		{
			Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{
				ec2Instance("i-2", "", "stopped"),
				ec2Instance("i-3", "db", "pending"),
			}}},
		},
	}}
	c, _ := newTestClient(t, map[string]*fakeEC2{"eu-west-1": fake})

	instances, err := c.ListInstances(context.Background(), "eu-west-1")
	require.NoError(t, err)
	require.Len(t, instances, 3)

	assert.Equal(t, types.Instance{ID: "i-1", Name: "web", Region: "eu-west-1", Type: "t3.micro", State: "running"}, instances[0])
	assert.Empty(t, instances[1].Name)
	assert.Equal(t, "pending", instances[2].State)
}

func TestListInstances_Error(t *testing.T) {
	fake := &fakeEC2{err: errors.New("UnauthorizedOperation")}
	c, _ := newTestClient(t, map[string]*fakeEC2{"us-east-1": fake})

	_, err := c.ListInstances(context.Background(), "us-east-1")
	assert.ErrorContains(t, err, "us-east-1")
}

func TestLifecycleCallsUseInstanceRegion(t *testing.T) {
	east, west := &fakeEC2{}, &fakeEC2{}
	c, _ := newTestClient(t, map[string]*fakeEC2{"us-east-1": east, "us-west-2": west})
	ctx := context.Background()

	inst := &types.Instance{ID: "i-9", Region: "us-west-2"}
	require.NoError(t, c.Start(ctx, inst))
	require.NoError(t, c.Stop(ctx, inst))
	require.NoError(t, c.Reboot(ctx, inst))

	assert.Equal(t, []string{"i-9"}, west.started)
	assert.Equal(t, []string{"i-9"}, west.stopped)
	assert.Equal(t, []string{"i-9"}, west.rebooted)
	assert.Empty(t, east.started)
}

func TestLifecycleErrorKeepsAPIMessage(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "IncorrectInstanceState", Message: "The instance is not in a state from which it can be started."}
	c, _ := newTestClient(t, map[string]*fakeEC2{"us-east-1": {err: apiErr}})

	err := c.Start(context.Background(), &types.Instance{ID: "i-1", Region: "us-east-1"})
	require.Error(t, err)
	assert.Equal(t, "The instance is not in a state from which it can be started.", provider.ErrorMessage(err))
}

func TestStatus(t *testing.T) {
	status := func(state ec2types.InstanceStateName, health ec2types.SummaryStatus) ec2types.InstanceStatus {
		return ec2types.InstanceStatus{
			InstanceState:  &ec2types.InstanceState{Name: state},
			InstanceStatus: &ec2types.InstanceStatusSummary{Status: health},
		}
	}

	tests := []struct {
		name   string
		status ec2types.InstanceStatus
		want   string
	}{
		{"stopped not applicable", status(ec2types.InstanceStateNameStopped, ec2types.SummaryStatusNotApplicable), "stopped"},
		{"running initializing", status(ec2types.InstanceStateNameRunning, ec2types.SummaryStatusInitializing), "running: initializing"},
		{"running ok", status(ec2types.InstanceStateNameRunning, ec2types.SummaryStatusOk), "running: ok"},
		{"pending without summary", ec2types.InstanceStatus{InstanceState: &ec2types.InstanceState{Name: ec2types.InstanceStateNamePending}}, "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEC2{statuses: []ec2types.InstanceStatus{tt.status}}
			c, _ := newTestClient(t, map[string]*fakeEC2{"us-east-1": fake})

			got, err := c.Status(context.Background(), &types.Instance{ID: "i-1", Region: "us-east-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, aws.ToBool(fake.statusReq.IncludeAllInstances))
		})
	}
}

func TestStatus_NoStatuses(t *testing.T) {
	c, _ := newTestClient(t, map[string]*fakeEC2{"us-east-1": {}})

	_, err := c.Status(context.Background(), &types.Instance{ID: "i-gone", Region: "us-east-1"})
	assert.ErrorIs(t, err, provider.ErrNoStatus)
}

func TestListRegions_SortedByGeography(t *testing.T) {
	fake := &fakeEC2{regions: []string{"eu-west-1", "ap-south-1", "us-west-2", "us-east-1"}}
	c, _ := newTestClient(t, map[string]*fakeEC2{"us-east-1": fake})

	got, err := c.ListRegions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1", "us-west-2", "eu-west-1", "ap-south-1"}, got)
}

func TestSetCredentials_ReplacesRegionalClients(t *testing.T) {
	fake := &fakeEC2{}
	c, loads := newTestClient(t, map[string]*fakeEC2{"us-east-1": fake})

	c.ec2("us-east-1")
	require.Len(t, c.clients, 1)

	creds := types.Credentials{Profile: "prod", Method: types.CredentialProfile}
	require.NoError(t, c.SetCredentials(context.Background(), creds))

	assert.Empty(t, c.clients)
	assert.Equal(t, creds, c.Credentials())
	assert.Equal(t, creds, (*loads)[len(*loads)-1])
}
