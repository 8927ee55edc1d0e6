package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/zeromicro/go-zero/core/logx"
)

const awsRegion = "us-east-2"

type parameterGetter interface {
	GetParameterWithContext(ctx aws.Context, input *ssm.GetParameterInput, opts ...request.Option) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets fills the gym auth token from SSM Parameter Store when
// Gym.AuthTokenParam is set and no token was given directly.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	if c.Gym.AuthToken != "" || c.Gym.AuthTokenParam == "" {
		return nil
	}
	sess, err := getAWSSession(c.AWS.Region)
	if err != nil {
		return err
	}

	return c.resolveSecrets(ctx, ssm.New(sess))
}

func (c *Config) resolveSecrets(ctx context.Context, params parameterGetter) error {
	out, err := params.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(c.Gym.AuthTokenParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("unable to get parameter %s: %w", c.Gym.AuthTokenParam, err)
	}
	if out.Parameter == nil || aws.StringValue(out.Parameter.Value) == "" {
		return fmt.Errorf("parameter %s is empty", c.Gym.AuthTokenParam)
	}
	c.Gym.AuthToken = aws.StringValue(out.Parameter.Value)
	logx.WithContext(ctx).Infof("resolved gym auth token from parameter %s", c.Gym.AuthTokenParam)

	return nil
}

func getAWSSession(region string) (*session.Session, error) {
	if region == "" {
		region = awsRegion
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create new session: %w", err)
	}

	return sess, nil
}
