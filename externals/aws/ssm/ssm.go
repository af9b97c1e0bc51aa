package ssm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// parameterGetter is the part of the ssm client used by SystemManager
type parameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SystemManager struct {
	client parameterGetter
}

// New create new SystemManager
// config will load secret, region from aws configure
func New(ctx context.Context) (*SystemManager, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &SystemManager{
		client: ssm.NewFromConfig(cfg),
	}, nil
}

// FindParameter find parameter in AWS SSM parameter store
func (s *SystemManager) FindParameter(ctx context.Context, parameterName string) (*ssm.GetParameterOutput, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(parameterName),
		WithDecryption: aws.Bool(true),
	}

	return s.client.GetParameter(ctx, input)
}

// GetParameterValue returns the decrypted value of a parameter
func (s *SystemManager) GetParameterValue(ctx context.Context, parameterName string) (string, error) {
	parameter, err := s.FindParameter(ctx, parameterName)
	if err != nil {
		return "", err
	}

	if parameter.Parameter == nil || parameter.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", parameterName)
	}

	return *parameter.Parameter.Value, nil
}
