package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/grocky/whatip-service/internal/handlers"
	"github.com/grocky/whatip-service/internal/response"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil)).With("service", "whatip")

// Handler handles the API gateway request.
func Handler(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method := request.HTTPMethod
	route := request.Path

	if method == http.MethodGet && route == "/ip" {
		resp, requestError := handlers.GetIPInfoFromEvent(request, logger)
		if requestError != nil {
			return clientError(requestError)
		}

		js, err := json.Marshal(resp.Body)
		if err != nil {
			return serverError(err)
		}

		return events.APIGatewayProxyResponse{
			StatusCode: resp.Status,
			Body:       string(js),
		}, nil
	}

	return clientError(&response.RequestError{
		Status:      http.StatusNotFound,
		Description: fmt.Sprintf("Resource not found: %s", route),
	})
}

func serverError(err error) (events.APIGatewayProxyResponse, error) {
	logger.Error("server error", "error", err)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       response.BuildErrorJSON(err.Error(), logger),
	}, nil
}

// Similarly add a helper for send responses relating to client errors.
func clientError(requestError *response.RequestError) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: requestError.Status,
		Body:       response.BuildErrorJSON(requestError.Error(), logger),
	}, nil
}

func main() {
	fmt.Print(os.Getenv("_LAMBDA_SERVER_PORT"))
	lambda.Start(Handler)
}
