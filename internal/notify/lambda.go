package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// ReportPayload is the event sent to the reporting function. Field names are
// the function's contract (camelCase).
type ReportPayload struct {
	OrgID   string   `json:"orgId"`
	To      []string `json:"to"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// LambdaAPI is the slice of the Lambda client the report function needs.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// ReportFunction invokes the remote reporting function synchronously.
type ReportFunction struct {
	Client       LambdaAPI
	FunctionName string
}

// NewReportFunction builds a ReportFunction on the shared AWS config.
// Client-side retries are disabled: a timed-out invoke may already have run,
// and a duplicate report beats an automatic double invoke.
func NewReportFunction(ctx context.Context, region, functionName string) (*ReportFunction, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := lambda.NewFromConfig(cfg, func(o *lambda.Options) {
		o.Retryer = aws.NopRetryer{}
	})
	return &ReportFunction{Client: client, FunctionName: functionName}, nil
}

// Invoke runs the reporting function and surfaces in-function errors
// (FunctionError + errorType/errorMessage payload) as Go errors.
func (f *ReportFunction) Invoke(ctx context.Context, payload ReportPayload) error {
	if f == nil || f.Client == nil || f.FunctionName == "" {
		return fmt.Errorf("report function is not configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	out, err := f.Client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(f.FunctionName),
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
		Payload:        data,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", f.FunctionName, err)
	}

	if out.FunctionError != nil {
		var remote struct {
			ErrorMessage string `json:"errorMessage"`
			ErrorType    string `json:"errorType"`
		}
		if len(out.Payload) > 0 {
			_ = json.Unmarshal(out.Payload, &remote)
		}
		if remote.ErrorType == "" {
			remote.ErrorType = *out.FunctionError
		}
		if remote.ErrorMessage == "" {
			remote.ErrorMessage = "unknown function error"
		}
		return fmt.Errorf("%s failed (%s): %s", f.FunctionName, remote.ErrorType, remote.ErrorMessage)
	}

	return nil
}
