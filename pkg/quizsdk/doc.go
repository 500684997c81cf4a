/*
Package quizsdk is a Go client for the MyTestBuddies quiz API.

# Client and Session

A Client covers the public endpoints: the OTP flow, registration, login and
the health probes. Registration and login return a Session that carries the
bearer token for everything else:

	client := quizsdk.NewClient("http://localhost:8080")

	if _, err := client.SendOTP(ctx, "asha@example.com"); err != nil {
		return err
	}
	// the code arrives by email
	if _, err := client.VerifyOTP(ctx, "asha@example.com", code); err != nil {
		return err
	}

	session, auth, err := client.Register(ctx, quizsdk.RegisterRequest{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Mobile:   "9876543210",
		Password: "secret123",
		UserType: "student",
	})

Sessions do not refresh tokens. Once AuthResponse.ExpiresAt has passed, log in
again.

# Quizzes

	fields, err := session.ListFields(ctx)
	questions, err := session.ListQuestions(ctx, fields[0].ID)

	progress, err := session.SubmitAnswers(ctx, fields[0].ID, []quizsdk.AnswerRequest{
		{QuestionID: questions[0].ID, Answer: "144"},
	})

Questions returned to non-admin sessions never carry CorrectAnswer or
Solution.

# Errors

Every non-2xx response is returned as an *APIError holding the status code,
the error code and the server's description:

	_, err := client.SendOTP(ctx, email)
	var apiErr *quizsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == quizsdk.ErrorCodeRateLimited {
		time.Sleep(time.Duration(apiErr.RetryAfter) * time.Second)
	}
*/
package quizsdk
