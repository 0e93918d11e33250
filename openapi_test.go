package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		var err error
		doc, err = openapi3.NewLoader().LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents every mounted resource route", func() {
		for _, path := range []string{
			"/auth/login", "/auth/register", "/auth/forgot-password", "/auth/reset-password", "/auth/me",
			"/organizations", "/organizations/{id}",
			"/users", "/folders",
			"/reports", "/reports/upload", "/reports/data-sources", "/reports/{id}",
			"/reports/{id}/download", "/reports/{id}/star", "/reports/{id}/permissions",
			"/activity", "/invitations", "/system/metrics", "/system/activity",
		} {
			Expect(doc.Paths.Value(path)).NotTo(BeNil(), path)
		}
	})

	It("secures resource routes with bearer auth by default", func() {
		Expect(doc.Components.SecuritySchemes).To(HaveKey("bearerAuth"))
		Expect(doc.Paths.Value("/auth/login").Post.Security).NotTo(BeNil())
		Expect(*doc.Paths.Value("/auth/login").Post.Security).To(BeEmpty())
	})
})
