package rigid3d

import "github.com/go-gl/mathgl/mgl32"

// prepareDynamicContact computes r_a/r_b, the normal and tangent
// effective masses, and the Baumgarte + restitution bias.
func prepareDynamicContact(c *DynamicContact, a, b *DynamicBody, dt float32) {
	c.RA = c.Point.Sub(a.Position)
	c.RB = c.Point.Sub(b.Position)
	c.Tangent1, c.Tangent2 = tangentBasis(c.Normal)

	normalDenom := a.InvMass + b.InvMass +
		effectiveMassTerm(0, a.InvInertia, c.RA, c.Normal) +
		effectiveMassTerm(0, b.InvInertia, c.RB, c.Normal)
	c.NormalMass = invOrInf(normalDenom)

	t1Denom := a.InvMass + b.InvMass +
		effectiveMassTerm(0, a.InvInertia, c.RA, c.Tangent1) +
		effectiveMassTerm(0, b.InvInertia, c.RB, c.Tangent1)
	c.TangentMass[0] = invOrInf(t1Denom)

	t2Denom := a.InvMass + b.InvMass +
		effectiveMassTerm(0, a.InvInertia, c.RA, c.Tangent2) +
		effectiveMassTerm(0, b.InvInertia, c.RB, c.Tangent2)
	c.TangentMass[1] = invOrInf(t2Denom)

	c.Bias = baumgarteBias(c.Penetration, dt)

	relVel := relativeVelocity(a.Velocity, a.AngularVelocity, c.RA, b.Velocity, b.AngularVelocity, c.RB)
	velAlongNormal := relVel.Dot(c.Normal)
	if velAlongNormal < restitutionVelThreshold {
		c.Bias += -c.Restitution * velAlongNormal
	}
}

// prepareStaticContact is the thin specialisation for a dynamic body
// against an immovable one: B contributes no inverse mass or inertia.
func prepareStaticContact(c *StaticContact, a *DynamicBody, dt float32) {
	c.RA = c.Point.Sub(a.Position)
	c.Tangent1, c.Tangent2 = tangentBasis(c.Normal)

	c.NormalMass = invOrInf(a.InvMass + effectiveMassTerm(0, a.InvInertia, c.RA, c.Normal))
	c.TangentMass[0] = invOrInf(a.InvMass + effectiveMassTerm(0, a.InvInertia, c.RA, c.Tangent1))
	c.TangentMass[1] = invOrInf(a.InvMass + effectiveMassTerm(0, a.InvInertia, c.RA, c.Tangent2))

	c.Bias = baumgarteBias(c.Penetration, dt)

	// Static bodies never move, so the relative velocity at the contact
	// point collapses to -vel_a instead of vel_b - vel_a.
	pointVelA := a.Velocity.Add(a.AngularVelocity.Cross(c.RA))
	velAlongNormal := pointVelA.Mul(-1).Dot(c.Normal)
	if velAlongNormal < restitutionVelThreshold {
		c.Bias += -c.Restitution * velAlongNormal
	}
}

func baumgarteBias(penetration, dt float32) float32 {
	if dt <= 0 {
		return 0
	}
	correction := penetration - contactSlop
	if correction < 0 {
		correction = 0
	}
	return (baumgarteBeta / dt) * correction
}

// relativeVelocity returns v_B - v_A at the contact point, matching the
// normal's A->B direction (narrowphase.go's normal = (posB-posA)/dist)
// so that a positive dot with the normal means the bodies are
// separating, consistent with resolveStaticContact's 0 - v_A case.
func relativeVelocity(velA, angVelA, rA mgl32.Vec3, velB, angVelB, rB mgl32.Vec3) mgl32.Vec3 {
	pointVelA := velA.Add(angVelA.Cross(rA))
	pointVelB := velB.Add(angVelB.Cross(rB))
	return pointVelB.Sub(pointVelA)
}

// warmstartDynamicContact applies the cached impulse (scaled by the
// caller, see World.warmstartContacts) as an immediate impulse on both
// bodies. Only the first substep of a Step applies warmstart.
func warmstartDynamicContact(c *DynamicContact, a, b *DynamicBody) {
	impulse := c.Normal.Mul(c.NormalImpulse).
		Add(c.Tangent1.Mul(c.TangentImpulse[0])).
		Add(c.Tangent2.Mul(c.TangentImpulse[1]))
	applyContactImpulse(a, impulse.Mul(-1), c.RA)
	applyContactImpulse(b, impulse, c.RB)
}

func warmstartStaticContact(c *StaticContact, a *DynamicBody) {
	impulse := c.Normal.Mul(c.NormalImpulse).
		Add(c.Tangent1.Mul(c.TangentImpulse[0])).
		Add(c.Tangent2.Mul(c.TangentImpulse[1]))
	applyContactImpulse(a, impulse.Mul(-1), c.RA)
}

func applyContactImpulse(body *DynamicBody, impulse mgl32.Vec3, r mgl32.Vec3) {
	body.Velocity = body.Velocity.Add(impulse.Mul(body.InvMass))
	angularImpulse := r.Cross(impulse)
	body.AngularVelocity = body.AngularVelocity.Add(mgl32.Vec3{
		angularImpulse.X() * body.InvInertia.X(),
		angularImpulse.Y() * body.InvInertia.Y(),
		angularImpulse.Z() * body.InvInertia.Z(),
	})
}

// resolveDynamicContact runs one sequential-impulse iteration: a
// clamped normal impulse followed by Coulomb-clamped tangent impulses.
// withBias selects whether the Baumgarte/restitution bias is injected
// (the biased solve pass) or omitted (the bias-free stabilization
// pass).
func resolveDynamicContact(c *DynamicContact, a, b *DynamicBody, withBias bool) {
	relVel := relativeVelocity(a.Velocity, a.AngularVelocity, c.RA, b.Velocity, b.AngularVelocity, c.RB)
	velN := relVel.Dot(c.Normal)

	bias := float32(0)
	if withBias {
		bias = c.Bias
	}
	dImpulse := c.NormalMass * (-velN + bias)
	newImpulse := maxf(c.NormalImpulse+dImpulse, 0)
	dImpulse = newImpulse - c.NormalImpulse
	c.NormalImpulse = newImpulse

	normalImpulseVec := c.Normal.Mul(dImpulse)
	applyContactImpulse(a, normalImpulseVec.Mul(-1), c.RA)
	applyContactImpulse(b, normalImpulseVec, c.RB)

	resolveTangent(c, a, b, 0, c.Tangent1)
	resolveTangent(c, a, b, 1, c.Tangent2)
}

func resolveTangent(c *DynamicContact, a, b *DynamicBody, i int, tangent mgl32.Vec3) {
	relVel := relativeVelocity(a.Velocity, a.AngularVelocity, c.RA, b.Velocity, b.AngularVelocity, c.RB)
	velT := relVel.Dot(tangent)

	dImpulse := c.TangentMass[i] * (-velT)
	maxFriction := c.Friction * c.NormalImpulse
	newImpulse := clampf(c.TangentImpulse[i]+dImpulse, -maxFriction, maxFriction)
	dImpulse = newImpulse - c.TangentImpulse[i]
	c.TangentImpulse[i] = newImpulse

	impulseVec := tangent.Mul(dImpulse)
	applyContactImpulse(a, impulseVec.Mul(-1), c.RA)
	applyContactImpulse(b, impulseVec, c.RB)
}

func resolveStaticContact(c *StaticContact, a *DynamicBody, withBias bool) {
	pointVelA := a.Velocity.Add(a.AngularVelocity.Cross(c.RA))
	velN := pointVelA.Mul(-1).Dot(c.Normal)

	bias := float32(0)
	if withBias {
		bias = c.Bias
	}
	dImpulse := c.NormalMass * (-velN + bias)
	newImpulse := maxf(c.NormalImpulse+dImpulse, 0)
	dImpulse = newImpulse - c.NormalImpulse
	c.NormalImpulse = newImpulse

	applyContactImpulse(a, c.Normal.Mul(-dImpulse), c.RA)

	resolveStaticTangent(c, a, 0, c.Tangent1)
	resolveStaticTangent(c, a, 1, c.Tangent2)
}

func resolveStaticTangent(c *StaticContact, a *DynamicBody, i int, tangent mgl32.Vec3) {
	pointVelA := a.Velocity.Add(a.AngularVelocity.Cross(c.RA))
	velT := pointVelA.Mul(-1).Dot(tangent)

	dImpulse := c.TangentMass[i] * (-velT)
	maxFriction := c.Friction * c.NormalImpulse
	newImpulse := clampf(c.TangentImpulse[i]+dImpulse, -maxFriction, maxFriction)
	dImpulse = newImpulse - c.TangentImpulse[i]
	c.TangentImpulse[i] = newImpulse

	applyContactImpulse(a, tangent.Mul(-dImpulse), c.RA)
}
