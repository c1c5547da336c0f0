package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrepo/internal/auth"
	"docrepo/internal/service"
)

// AddClient registers a client and returns its credentials.
//
// @Summary Register a client
// @Tags clients
// @Accept json
// @Produce json
// @Param body body service.AddClientInput true "Client"
// @Success 201 {object} envelope{data=service.ClientCredentials}
// @Failure 400 {object} envelope
// @Failure 409 {object} envelope
// @Router /clients [post]
func AddClient(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.AddClientInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(msgInvalidBody)
		}
		creds, err := svc.AddClient(c.UserContext(), in)
		if err != nil {
			return err
		}
		return writeOK(c, fiber.StatusCreated, creds)
	}
}

// ModifyClient changes the name or email of the calling client.
//
// @Summary Modify the calling client
// @Tags clients
// @Accept json
// @Produce json
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param body body service.ModifyClientInput true "Fields to change"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Failure 409 {object} envelope
// @Router /clients [patch]
func ModifyClient(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ModifyClientInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(msgInvalidBody)
		}
		in.ClientID = auth.ClientID(c)
		if err := svc.ModifyClient(c.UserContext(), in); err != nil {
			return err
		}
		return writeOK(c, fiber.StatusOK, nil)
	}
}

// AddApp creates an app with its data-key schema for the calling client.
//
// @Summary Create an app
// @Tags apps
// @Accept json
// @Produce json
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param body body service.AddAppInput true "App"
// @Success 201 {object} envelope{data=service.AppCreated}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 409 {object} envelope
// @Router /apps [post]
func AddApp(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.AddAppInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(msgInvalidBody)
		}
		in.ClientID = auth.ClientID(c)
		res, err := svc.AddApp(c.UserContext(), in)
		if err != nil {
			return err
		}
		return writeOK(c, fiber.StatusCreated, res)
	}
}

// ModifyApp renames an app or replaces its schema.
//
// @Summary Modify an app
// @Tags apps
// @Accept json
// @Produce json
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param app_id path string true "App ID"
// @Param body body service.ModifyAppInput true "Fields to change"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Failure 409 {object} envelope
// @Router /apps/{app_id} [patch]
func ModifyApp(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ModifyAppInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(msgInvalidBody)
		}
		in.ClientID = auth.ClientID(c)
		in.AppID = c.Params("app_id")
		if err := svc.ModifyApp(c.UserContext(), in); err != nil {
			return err
		}
		return writeOK(c, fiber.StatusOK, nil)
	}
}
